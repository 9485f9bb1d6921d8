package session

import "errors"

// ErrNotFound is returned by Store lookups for unknown session ids.
var ErrNotFound = errors.New("session not found")
