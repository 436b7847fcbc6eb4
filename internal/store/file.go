package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps sources and artifacts on the local filesystem.
type FileStore struct {
	// Perm is the mode of newly written files. Zero means 0644.
	Perm os.FileMode
}

// NewFileStore returns a FileStore writing files with mode 0644.
func NewFileStore() *FileStore {
	return &FileStore{Perm: 0o644}
}

func (s *FileStore) Stat(ctx context.Context, path string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (s *FileStore) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// Write creates missing parent directories before writing.
func (s *FileStore) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}
	return os.WriteFile(path, data, perm)
}
