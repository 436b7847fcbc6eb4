// Package store is the I/O collaborator of the compiler: it answers whether
// a template or compiled artifact exists and when it last changed, and reads
// and writes their contents.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Stat and Read when the path does not exist.
var ErrNotFound = errors.New("not found")

//go:generate mockgen -destination mock/store.go -package mockstore github.com/hassan/volt/internal/store Store

// Store reads and writes template sources and compiled artifacts by path.
type Store interface {
	// Stat returns the modification time of path, or ErrNotFound.
	Stat(ctx context.Context, path string) (time.Time, error)

	// Read returns the contents of path, or ErrNotFound.
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the contents of path.
	Write(ctx context.Context, path string, data []byte) error
}
