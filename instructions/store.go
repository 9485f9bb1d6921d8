// Package instructions stores the assistant's standing instruction text,
// the turn-start guidance prepended to every generation round. Instructions
// are read on every run and appended to out-of-band via the instruction
// update endpoint.
package instructions

import (
	"context"
	"sync"
)

// Store holds a single instruction document.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the current instruction text.
	Load(ctx context.Context) (string, error)
	// Save replaces the instruction text.
	Save(ctx context.Context, text string) error
}

type memoryStore struct {
	mu   sync.RWMutex
	text string
}

// NewMemoryStore creates a Store holding instructions in memory, seeded
// with the given text.
func NewMemoryStore(text string) Store {
	return &memoryStore{text: text}
}

func (s *memoryStore) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text, nil
}

func (s *memoryStore) Save(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	return nil
}
