// Package memory provides a process-local store, mainly for tests.
package memory

import (
	"context"
	"sync"
)

// MemoryStorage keeps values in a map and remembers first-insertion order
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
	order  []string
}

// New creates an empty in-memory store
func New() *MemoryStorage {
	return &MemoryStorage{values: map[string][]byte{}}
}

// Get returns a copy of the value stored under key
func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value under key
func (m *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; !ok {
		m.order = append(m.order, key)
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Remove deletes key if present
func (m *MemoryStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.values[key]; !ok {
		return nil
	}
	delete(m.values, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Keys lists keys in first-insertion order
func (m *MemoryStorage) Keys(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.order...), nil
}

// Close is a no-op
func (m *MemoryStorage) Close() error {
	return nil
}
