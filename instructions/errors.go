package instructions

import "errors"

// Sentinel errors for instruction storage.
var (
	ErrLoadFailed = errors.New("failed to load instructions")
	ErrSaveFailed = errors.New("failed to save instructions")
)
