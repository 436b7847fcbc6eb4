package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data  []byte
	mtime time.Time
}

// MemoryStore is an in-process Store. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry

	// Now stamps writes. It defaults to time.Now and can be replaced to
	// control freshness checks.
	Now func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		Now:     time.Now,
	}
}

func (s *MemoryStore) Stat(_ context.Context, path string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[path]
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return e.mtime, nil
}

func (s *MemoryStore) Read(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return append([]byte(nil), e.data...), nil
}

func (s *MemoryStore) Write(_ context.Context, path string, data []byte) error {
	s.Put(path, data, s.Now())
	return nil
}

// Put stores data under path with an explicit modification time.
func (s *MemoryStore) Put(path string, data []byte, mtime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = memoryEntry{data: append([]byte(nil), data...), mtime: mtime}
}

// Len returns the number of stored paths.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
