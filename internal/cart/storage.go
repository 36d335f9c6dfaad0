package cart

import (
	"context"
	"sync"
)

// Storage is a named string-blob store used to persist serialized carts.
type Storage interface {
	// Get returns the blob stored under name. ok is false when nothing is stored.
	Get(ctx context.Context, name string) (value string, ok bool, err error)
	Set(ctx context.Context, name, value string) error
}

// MemoryStorage keeps blobs in process memory.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string]string)}
}

func (m *MemoryStorage) Get(_ context.Context, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.blobs[name]
	return v, ok, nil
}

func (m *MemoryStorage) Set(_ context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = value
	return nil
}
