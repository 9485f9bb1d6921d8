package actions

import "errors"

// Sentinel errors for the actions registry.
var (
	ErrNotFound      = errors.New("tool not found")
	ErrAlreadyExists = errors.New("action already registered")
	ErrEmptyName     = errors.New("action name is empty")
)
