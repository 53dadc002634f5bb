package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// sessionIndex is the index.yaml file at the store root.
type sessionIndex struct {
	Sessions []SessionInfo `yaml:"sessions"`
}

// FileStore keeps sessions on the local filesystem:
//
//	<baseDir>/index.yaml
//	<baseDir>/sessions/<session-id>/session.yaml
//	<baseDir>/sessions/<session-id>/<files...>
type FileStore struct {
	baseDir string
	mu      sync.Mutex // guards index.yaml
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store rooted at baseDir. The directory is created on first write.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

// BaseDir returns the store root.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

// SessionDir returns the directory of a session.
func (s *FileStore) SessionDir(sessionID string) string {
	return filepath.Join(s.baseDir, "sessions", sessionID)
}

func (s *FileStore) indexPath() string {
	return filepath.Join(s.baseDir, "index.yaml")
}

func (s *FileStore) Put(_ context.Context, sessionID, name string, content []byte) error {
	p, err := s.filePath(sessionID, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(p, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, sessionID, name string) ([]byte, error) {
	p, err := s.filePath(sessionID, name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, sessionID, name)
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (s *FileStore) List(_ context.Context, sessionID string) ([]string, error) {
	id, err := checkSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	dir := s.SessionDir(id)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
		}
		return nil, err
	}

	names := []string{}
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel != metadataFile {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list session %s: %w", id, err)
	}

	sort.Strings(names)
	return names, nil
}

// SaveSession writes the session's session.yaml and adds or updates its entry in index.yaml.
func (s *FileStore) SaveSession(_ context.Context, info SessionInfo) error {
	id, err := checkSessionID(info.SessionID)
	if err != nil {
		return err
	}
	info.SessionID = id

	dir := s.SessionDir(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := yaml.Marshal(&info)
	if err != nil {
		return fmt.Errorf("failed to marshal session info: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write session info: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.readIndex()
	if err != nil {
		return err
	}

	found := false
	for i, existing := range index.Sessions {
		if existing.SessionID == id {
			index.Sessions[i] = info
			found = true
			break
		}
	}
	if !found {
		index.Sessions = append(index.Sessions, info)
	}
	sortSessions(index.Sessions)

	output, err := yaml.Marshal(&index)
	if err != nil {
		return fmt.Errorf("failed to marshal session index: %w", err)
	}
	if err := os.WriteFile(s.indexPath(), output, 0644); err != nil {
		return fmt.Errorf("failed to write session index: %w", err)
	}
	return nil
}

// Sessions reads index.yaml. A store without an index has no sessions.
func (s *FileStore) Sessions(_ context.Context) ([]SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := s.readIndex()
	if err != nil {
		return nil, err
	}
	if index.Sessions == nil {
		return []SessionInfo{}, nil
	}
	sortSessions(index.Sessions)
	return index.Sessions, nil
}

func (s *FileStore) readIndex() (sessionIndex, error) {
	var index sessionIndex
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return index, nil
		}
		return index, fmt.Errorf("failed to read session index: %w", err)
	}
	if err := yaml.Unmarshal(data, &index); err != nil {
		return index, fmt.Errorf("failed to parse session index: %w", err)
	}
	return index, nil
}

func (s *FileStore) filePath(sessionID, name string) (string, error) {
	id, err := checkSessionID(sessionID)
	if err != nil {
		return "", err
	}
	cleaned, err := cleanName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.SessionDir(id), filepath.FromSlash(cleaned)), nil
}
