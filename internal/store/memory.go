package store

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore implements Store with an in-process map.
// Error injection is supported for testing error handling paths.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte

	// ops tracks all operations ("get:key", "set:key", "delete:key") for test assertions
	ops []string

	// GetErr is returned by Get when non-nil
	GetErr error

	// SetErr is returned by Set when non-nil
	SetErr error

	// DeleteErr is returned by Delete when non-nil
	DeleteErr error

	// PingErr is returned by Ping when non-nil
	PingErr error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "get:"+key)

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "set:"+key)

	if m.SetErr != nil {
		return m.SetErr
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "delete:"+key)

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return m.PingErr
}

func (m *MemoryStore) Close() error {
	return nil
}

// Has reports whether key currently has a value.
func (m *MemoryStore) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.values[key]
	return ok
}

// Ops returns a copy of the recorded operations.
func (m *MemoryStore) Ops() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.ops))
	copy(out, m.ops)
	return out
}

// WriteCount returns how many Set and Delete calls were made.
func (m *MemoryStore) WriteCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, op := range m.ops {
		if strings.HasPrefix(op, "set:") || strings.HasPrefix(op, "delete:") {
			n++
		}
	}
	return n
}
