package blob

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-memory Store, primarily for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates a MemoryStore seeded with the given blobs.
func NewMemoryStore(blobs map[string][]byte) *MemoryStore {
	m := &MemoryStore{blobs: make(map[string][]byte, len(blobs))}
	for k, v := range blobs {
		m.blobs[k] = v
	}
	return m
}

// Put stores contents under key, replacing any existing value.
func (m *MemoryStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = data
}

// Get returns the contents stored under key.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return data, nil
}
