package config

import "sync"

// MemoryStore is an in-memory Store used in tests and as a fallback when no
// persistent store is available.
type MemoryStore struct {
	mu       sync.RWMutex
	settings *Settings
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{settings: &Settings{}}
}

// Load returns a deep copy of the current settings.
func (m *MemoryStore) Load() (*Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.Clone(), nil
}

// Save replaces the stored settings atomically.
func (m *MemoryStore) Save(s *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s.Clone()
	return nil
}
