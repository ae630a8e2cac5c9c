package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"glownexa-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem.
type Store struct {
	baseDir string
	baseURL string
}

// New creates a local object store rooted at baseDir whose objects are
// served under baseURL.
func New(baseDir, baseURL string) *Store {
	return &Store{baseDir: baseDir, baseURL: baseURL}
}

// Dir returns the root directory, for mounting a static file handler.
func (s *Store) Dir() string { return s.baseDir }

// Put writes the reader to disk at key.
func (s *Store) Put(ctx context.Context, key, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fullPath, err := s.path(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("write body: %w", err)
	}
	return written, nil
}

// Delete removes key; a missing file is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// URL returns the address the static handler serves key at.
func (s *Store) URL(key string) string {
	clean, err := object.CleanKey(key)
	if err != nil {
		return ""
	}
	return object.JoinURL(s.baseURL, clean)
}

func (s *Store) path(key string) (string, error) {
	clean, err := object.CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

var _ object.ObjectStore = (*Store)(nil)
