package store

import (
	"context"
	"sync"

	"github.com/nostrmarket/agora/core"
	"github.com/nostrmarket/agora/ports"
)

// MemoryStore is an in-memory session store for single-process use and
// tests. Single writer, many readers, guarded by a RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	session *core.Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() ports.SessionStore {
	return &MemoryStore{}
}

// Save persists the session, replacing any existing one.
func (s *MemoryStore) Save(ctx context.Context, session *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.session = &copied
	return nil
}

// Load returns the persisted session, or (nil, nil) when empty.
func (s *MemoryStore) Load(ctx context.Context) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil, nil
	}
	copied := *s.session
	return &copied, nil
}

// Clear removes the persisted session.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}
