package figmadocgen

import (
	"fmt"
	"log/slog"
)

// SlogLogger adapts a *slog.Logger to Logger. Used by the HTTP server, where progress is
// logged as structured records rather than colored terminal lines.
type SlogLogger struct {
	L     *slog.Logger
	Attrs []any // added to every record, e.g. "session", id
}

func (l SlogLogger) logger() *slog.Logger {
	if l.L == nil {
		return slog.Default()
	}
	return l.L
}

func (l SlogLogger) Infof(format string, args ...any) {
	l.logger().Info(fmt.Sprintf(format, args...), l.Attrs...)
}

func (l SlogLogger) Warnf(format string, args ...any) {
	l.logger().Warn(fmt.Sprintf(format, args...), l.Attrs...)
}

func (l SlogLogger) Errorf(format string, args ...any) {
	l.logger().Error(fmt.Sprintf(format, args...), l.Attrs...)
}
