package instructions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type fileStore struct {
	path     string
	fallback string
	mu       sync.Mutex
}

// NewFileStore creates a Store backed by a single file so instruction
// updates survive restarts. Load returns fallback until the first Save
// creates the file.
func NewFileStore(path, fallback string) Store {
	return &fileStore{path: path, fallback: fallback}
}

func (s *fileStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.fallback, nil
		}
		return "", fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	return string(data), nil
}

func (s *fileStore) Save(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrSaveFailed, err)
		}
	}

	if err := os.WriteFile(s.path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	return nil
}
