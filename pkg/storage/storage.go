// Package storage persists the files generated for an analysis session.
//
// Every session owns a flat namespace of slash-separated file names (for example "tokens.css" or
// "previews/home.png") plus a small metadata record that is used to list past sessions.
// Two implementations are provided: FileStore keeps everything under a local directory and
// S3Store keeps it in an S3-compatible bucket.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a session or file does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidName is returned for empty, absolute or parent-relative names.
	ErrInvalidName = errors.New("invalid name")
)

// metadataFile is the per-session metadata record. It is not reported by List.
const metadataFile = "session.yaml"

// SessionInfo describes one stored analysis session.
type SessionInfo struct {
	SessionID  string            `yaml:"session_id" json:"sessionId"`
	FileKey    string            `yaml:"file_key" json:"fileKey"`
	FileName   string            `yaml:"file_name" json:"fileName"`
	Created    time.Time         `yaml:"created" json:"created"`
	TokenCount int               `yaml:"token_count" json:"tokenCount"`
	Sources    map[string]string `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// Store persists session files and metadata.
type Store interface {
	// Put writes (or overwrites) a session file.
	Put(ctx context.Context, sessionID, name string, content []byte) error
	// Get reads a session file, ErrNotFound when missing.
	Get(ctx context.Context, sessionID, name string) ([]byte, error)
	// List returns the sorted file names of a session.
	List(ctx context.Context, sessionID string) ([]string, error)
	// SaveSession records the session metadata.
	SaveSession(ctx context.Context, info SessionInfo) error
	// Sessions returns every recorded session, newest first.
	Sessions(ctx context.Context) ([]SessionInfo, error)
}

var now = time.Now

// NewSessionID creates a timestamp-first session ID for an analysis of fileKey.
// Format: YYYY-MM-DDTHH-MM-{hash}, where hash is 12 hex characters derived from the file key
// and the optional scope (node IDs, page name).
func NewSessionID(fileKey string, scope ...string) string {
	h := sha256.New()
	h.Write([]byte(fileKey))
	for _, s := range scope {
		h.Write([]byte("\n"))
		h.Write([]byte(s))
	}
	// Nanoseconds keep two runs of the same file within one minute apart.
	h.Write([]byte(fmt.Sprintf("\n%d", now().UnixNano())))
	shortHash := hex.EncodeToString(h.Sum(nil)[:6])

	return fmt.Sprintf("%s-%s", now().UTC().Format("2006-01-02T15-04"), shortHash)
}

// checkSessionID rejects IDs that could escape the session namespace.
func checkSessionID(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || sessionID == "." || sessionID == ".." || strings.ContainsAny(sessionID, `/\`) {
		return "", fmt.Errorf("%w: session id %q", ErrInvalidName, sessionID)
	}
	return sessionID, nil
}

// cleanName normalizes a file name to a relative slash path inside the session.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: file name %q", ErrInvalidName, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: file name %q", ErrInvalidName, name)
		}
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == metadataFile {
		return "", fmt.Errorf("%w: file name %q", ErrInvalidName, name)
	}
	return cleaned, nil
}

// sortSessions orders sessions newest first. Session IDs are timestamp-first, so they break ties.
func sortSessions(sessions []SessionInfo) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].Created.Equal(sessions[j].Created) {
			return sessions[i].Created.After(sessions[j].Created)
		}
		return sessions[i].SessionID > sessions[j].SessionID
	})
}
