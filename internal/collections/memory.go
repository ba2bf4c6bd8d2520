package collections

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory. Used for dry runs and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, blobs ...Blob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range blobs {
		data := make([]byte, len(b.Data))
		copy(data, b.Data)
		m.blobs[b.Key] = data
	}
	return nil
}
