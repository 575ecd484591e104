package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory.
// Used by tests and by --ephemeral runs.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set saves a session, replacing any previous one.
func (m *MemoryStore) Set(ctx context.Context, s Session) error {
	if err := s.Validate(); err != nil {
		return storeErr("memory", "set", err)
	}
	cp := s
	m.mu.Lock()
	m.session = &cp
	m.mu.Unlock()
	return nil
}

// Get returns the stored session or ErrNoSession.
func (m *MemoryStore) Get(ctx context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return Session{}, ErrNoSession
	}
	return *m.session, nil
}

// Clear drops the stored session.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
