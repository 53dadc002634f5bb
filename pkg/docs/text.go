package docs

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kataras/figma-docgen/pkg/tokens"
)

func fontFamilies(styles []tokens.TypographyToken) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range styles {
		if seen[s.FontFamily] {
			continue
		}
		seen[s.FontFamily] = true
		out = append(out, s.FontFamily)
	}
	sort.Strings(out)
	return out
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64) + "px"
	}
	return strings.Join(parts, ", ")
}
