package testutil

import (
	"context"
	"sync"

	"github.com/bemyforce/bemyforce/internal/app/system/objectstore"
	"github.com/dalemusser/waffle/pantry/storage"
)

// StorageBaseURL is the public URL prefix of objects in test storage.
const StorageBaseURL = "https://cdn.test"

// Storage is an in-memory storage backend that can be told to fail.
// Set the Fail fields before the backend is used.
type Storage struct {
	*storage.Memory

	// FailPuts, when set, is returned by writes after FailAfter of them
	// have succeeded.
	FailPuts    error
	FailAfter   int
	FailDeletes error

	mu   sync.Mutex
	puts int
}

// NewStorage returns an empty test backend.
func NewStorage() *Storage {
	return &Storage{Memory: storage.NewMemory(storage.MemoryConfig{BaseURL: StorageBaseURL})}
}

// NewObjectStore wraps a fresh test backend in an objectstore.Store.
func NewObjectStore() (*objectstore.Store, *Storage) {
	backend := NewStorage()
	return objectstore.New(backend), backend
}

func (s *Storage) PutBytes(ctx context.Context, path string, data []byte, opts *storage.PutOptions) error {
	s.mu.Lock()
	s.puts++
	fail := s.FailPuts != nil && s.puts > s.FailAfter
	s.mu.Unlock()
	if fail {
		return s.FailPuts
	}
	return s.Memory.PutBytes(ctx, path, data, opts)
}

func (s *Storage) Delete(ctx context.Context, path string) error {
	if s.FailDeletes != nil {
		return s.FailDeletes
	}
	return s.Memory.Delete(ctx, path)
}

func (s *Storage) DeleteMany(ctx context.Context, paths []string) (int, error) {
	if s.FailDeletes != nil {
		return 0, s.FailDeletes
	}
	return s.Memory.DeleteMany(ctx, paths)
}

// Has reports whether key is stored.
func (s *Storage) Has(key string) bool {
	ok, _ := s.Memory.Exists(context.Background(), key)
	return ok
}
