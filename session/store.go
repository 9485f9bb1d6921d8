package session

import (
	"fmt"
	"sync"
)

// Store owns the lifecycle of live sessions: created lazily on a turn's
// first use, retrieved by id on later turns, and destroyed only by an
// explicit Delete. Thread-safe for concurrent access.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]Session),
	}
}

// Create adds a fresh in-memory session to the store and returns it.
func (s *Store) Create() Session {
	sess := NewMemorySession()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
	return sess
}

// Get retrieves a session by id. Returns ErrNotFound for unknown ids.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// Delete removes a session by id. Returns ErrNotFound for unknown ids;
// deleting twice fails the second time.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
