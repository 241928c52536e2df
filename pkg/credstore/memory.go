package credstore

import (
	"context"
	"sync"
)

// MemoryStore keeps credentials in process memory. Useful for tests and
// one-shot CLI runs where nothing should outlive the process.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[Role]map[Key]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[Role]map[Key]string)}
}

func (m *MemoryStore) Get(_ context.Context, role Role, key Key) (string, error) {
	if !role.Valid() {
		return "", ErrInvalidRole
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[role][key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, role Role, key Key, value string) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.data[role]
	if !ok {
		ns = make(map[Key]string, len(AllKeys))
		m.data[role] = ns
	}
	ns[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, role Role, keys ...Key) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ns := m.data[role]
	for _, k := range keys {
		delete(ns, k)
	}
	return nil
}

func (m *MemoryStore) Close() error { return nil }
