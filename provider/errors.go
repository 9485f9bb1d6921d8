package provider

import "errors"

// Sentinel errors shared by provider bindings.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRunNotFound     = errors.New("run not found")
	// ErrResultMismatch reports an action result set that does not match the
	// requested call ids 1:1. Partial submission is undefined behavior for
	// the provider, so bindings reject it before submitting anything.
	ErrResultMismatch = errors.New("action results do not match requested calls")
)
