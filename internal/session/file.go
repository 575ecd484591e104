package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists the session as a JSON document:
//
//	{"token": "...", "admin": {...}}
//
// The file is written with mode 0600 via a temp file and rename, so a crash
// never leaves half a session on disk.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the file at path.
// The parent directory is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Set writes the session, replacing any previous file.
func (f *FileStore) Set(ctx context.Context, s Session) error {
	if err := s.Validate(); err != nil {
		return storeErr("file", "set", err)
	}
	if err := ctx.Err(); err != nil {
		return storeErr("file", "set", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return storeErr("file", "set", fmt.Errorf("marshal session: %w", err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return storeErr("file", "set", fmt.Errorf("create session directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return storeErr("file", "set", fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return storeErr("file", "set", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return storeErr("file", "set", fmt.Errorf("write session: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return storeErr("file", "set", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return storeErr("file", "set", fmt.Errorf("replace session file: %w", err))
	}
	return nil
}

// Get reads the session file. A missing file or a file without a token
// means no session.
func (f *FileStore) Get(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, storeErr("file", "get", err)
	}

	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	f.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, storeErr("file", "get", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, storeErr("file", "get", errors.Join(ErrCorrupt, err))
	}
	if s.Token == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Clear removes the session file. Removing a missing file is not an error.
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return storeErr("file", "clear", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
