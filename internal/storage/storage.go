// Package storage provides the key-value port used for persisted
// per-project state, with in-memory, file and Redis backends.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by Get when a key has never been set.
var ErrNotFound = errors.New("key not found")

// Store is a minimal key-value port. Values are opaque bytes, JSON by
// convention. Writes are synchronous; concurrent writers race with
// last-write-wins semantics.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Memory is a map-backed Store for tests and throwaway sessions.
type Memory struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	return nil
}
