// Package database records analysis runs in a relational table so past sessions can be listed
// and looked up without reading session storage.
//
// SQLite (modernc.org/sqlite, pure Go) is the default; PostgreSQL is reached through the pgx
// database/sql driver. Both share one schema and one set of queries.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DefaultListLimit is used by List when limit is not positive.
const DefaultListLimit = 50

// ErrNotFound is returned when no analysis exists for a session.
var ErrNotFound = errors.New("analysis not found")

// timeLayout is fixed-width so created_at sorts lexicographically in both databases.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Analysis is one recorded analysis run.
type Analysis struct {
	ID              int64             `json:"id"`
	SessionID       string            `json:"sessionId"`
	FileKey         string            `json:"fileKey"`
	FileName        string            `json:"fileName"`
	CreatedAt       time.Time         `json:"createdAt"`
	ColorCount      int               `json:"colorCount"`
	TypographyCount int               `json:"typographyCount"`
	SpacingCount    int               `json:"spacingCount"`
	RadiusCount     int               `json:"radiusCount"`
	Tokens          json.RawMessage   `json:"tokens,omitempty"`
	Sources         map[string]string `json:"sources,omitempty"`
}

// Repository stores analyses.
type Repository interface {
	// Save inserts the analysis or replaces the one with the same session ID, and sets a.ID.
	Save(ctx context.Context, a *Analysis) error
	// Get returns the analysis of a session, ErrNotFound when missing.
	Get(ctx context.Context, sessionID string) (*Analysis, error)
	// List returns up to limit analyses, newest first.
	List(ctx context.Context, limit int) ([]Analysis, error)
}

// DB is a Repository over database/sql.
type DB struct {
	db     *sql.DB
	driver string

	schemaOnce sync.Once
	schemaErr  error
}

var _ Repository = (*DB)(nil)

// Open connects to the database. driver is "sqlite" (dsn is a file path, its directory is
// created) or "pgx"/"postgres" (dsn is a connection string). The schema is created on first use.
func Open(driver, dsn string) (*DB, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	dsn = strings.TrimSpace(dsn)

	switch driver {
	case "", DriverSQLite, "sqlite3":
		return openSQLite(dsn)
	case DriverPostgres, "postgres", "postgresql":
		return openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func openSQLite(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite database path is required")
	}
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; concurrent requests queue in the pool instead of hitting SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	return &DB{db: sqlDB, driver: DriverSQLite}, nil
}

func openPostgres(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return &DB{db: sqlDB, driver: DriverPostgres}, nil
}

// Driver returns the normalized driver name.
func (d *DB) Driver() string {
	return d.driver
}

// Close closes the connection pool.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) ensureSchema(ctx context.Context) error {
	if d == nil || d.db == nil {
		return fmt.Errorf("db is nil")
	}
	d.schemaOnce.Do(func() {
		ddl := sqliteSchema
		if d.driver == DriverPostgres {
			ddl = postgresSchema
		}
		_, d.schemaErr = d.db.ExecContext(ctx, ddl)
	})
	return d.schemaErr
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS analyses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL UNIQUE,
    file_key TEXT NOT NULL,
    file_name TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    color_count INTEGER NOT NULL DEFAULT 0,
    typography_count INTEGER NOT NULL DEFAULT 0,
    spacing_count INTEGER NOT NULL DEFAULT 0,
    radius_count INTEGER NOT NULL DEFAULT 0,
    tokens_json TEXT NOT NULL DEFAULT '{}',
    sources_json TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS analyses (
    id BIGSERIAL PRIMARY KEY,
    session_id TEXT NOT NULL UNIQUE,
    file_key TEXT NOT NULL,
    file_name TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    color_count INTEGER NOT NULL DEFAULT 0,
    typography_count INTEGER NOT NULL DEFAULT 0,
    spacing_count INTEGER NOT NULL DEFAULT 0,
    radius_count INTEGER NOT NULL DEFAULT 0,
    tokens_json TEXT NOT NULL DEFAULT '{}',
    sources_json TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at);
`

const upsertAnalysis = `
INSERT INTO analyses (session_id, file_key, file_name, created_at, color_count, typography_count,
    spacing_count, radius_count, tokens_json, sources_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (session_id)
DO UPDATE SET file_key=EXCLUDED.file_key, file_name=EXCLUDED.file_name, created_at=EXCLUDED.created_at,
    color_count=EXCLUDED.color_count, typography_count=EXCLUDED.typography_count,
    spacing_count=EXCLUDED.spacing_count, radius_count=EXCLUDED.radius_count,
    tokens_json=EXCLUDED.tokens_json, sources_json=EXCLUDED.sources_json
RETURNING id
`

const selectAnalysis = `
SELECT id, session_id, file_key, file_name, created_at, color_count, typography_count,
    spacing_count, radius_count, tokens_json, sources_json
FROM analyses`

func (d *DB) Save(ctx context.Context, a *Analysis) error {
	if a == nil {
		return fmt.Errorf("analysis is nil")
	}
	a.SessionID = strings.TrimSpace(a.SessionID)
	if a.SessionID == "" {
		return fmt.Errorf("session_id is required")
	}
	if err := d.ensureSchema(ctx); err != nil {
		return err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	tokensJSON := "{}"
	if len(a.Tokens) > 0 {
		tokensJSON = string(a.Tokens)
	}
	sources := a.Sources
	if sources == nil {
		sources = map[string]string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	err = d.db.QueryRowContext(ctx, d.rebind(upsertAnalysis),
		a.SessionID, a.FileKey, a.FileName, formatTime(a.CreatedAt),
		a.ColorCount, a.TypographyCount, a.SpacingCount, a.RadiusCount,
		tokensJSON, string(sourcesJSON),
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", a.SessionID, err)
	}
	return nil
}

func (d *DB) Get(ctx context.Context, sessionID string) (*Analysis, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	if err := d.ensureSchema(ctx); err != nil {
		return nil, err
	}

	row := d.db.QueryRowContext(ctx, d.rebind(selectAnalysis+" WHERE session_id = ?"), sessionID)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (d *DB) List(ctx context.Context, limit int) ([]Analysis, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if err := d.ensureSchema(ctx); err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, d.rebind(selectAnalysis+" ORDER BY created_at DESC, id DESC LIMIT ?"), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (*Analysis, error) {
	var (
		a           Analysis
		createdAt   string
		tokensJSON  string
		sourcesJSON string
	)
	err := s.Scan(&a.ID, &a.SessionID, &a.FileKey, &a.FileName, &createdAt,
		&a.ColorCount, &a.TypographyCount, &a.SpacingCount, &a.RadiusCount,
		&tokensJSON, &sourcesJSON)
	if err != nil {
		return nil, err
	}

	if a.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at of %s: %w", a.SessionID, err)
	}
	a.Tokens = json.RawMessage(tokensJSON)
	if err := json.Unmarshal([]byte(sourcesJSON), &a.Sources); err != nil {
		return nil, fmt.Errorf("parse sources of %s: %w", a.SessionID, err)
	}
	return &a, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// rebind rewrites ? placeholders to $1, $2... for PostgreSQL.
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
