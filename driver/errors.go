package driver

import "errors"

var (
	// ErrSessionUnavailable is returned when the provider can neither
	// retrieve nor create a session for the turn. Fatal before any frame is
	// emitted, so callers can surface it as a request failure.
	ErrSessionUnavailable = errors.New("session unavailable")

	// ErrStreamAborted is returned when a provider stream fails or ends
	// without a terminal event mid-turn. The frame stream ends without a
	// terminal marker.
	ErrStreamAborted = errors.New("provider stream aborted unexpectedly")

	// ErrMaxRounds is returned when a turn exhausts its generation round
	// budget without resolving.
	ErrMaxRounds = errors.New("max generation rounds reached")
)
