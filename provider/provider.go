// Package provider defines the generation provider capability consumed by
// the turn driver: session lifecycle, message appending, and streaming run
// execution. Concrete bindings live in subpackages.
package provider

import (
	"context"

	"github.com/tailored-agentic-units/relay/core/protocol"
)

// Session identifies a provider-held conversation context.
type Session struct {
	ID string `json:"id"`
}

// DeletionAck is the provider's acknowledgment of a session deletion.
type DeletionAck struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

// EventStream is an iterator over the generation events of one run attempt.
// The caller may stop consuming at any point (early abandonment) and must
// call Close when done. After Next returns false, Err reports whether the
// stream ended because of a transport or provider failure.
type EventStream interface {
	Next() bool
	Current() protocol.Event
	Err() error
	Close() error
}

// Provider is the generation capability the turn driver runs against.
//
// StartRun opens a fresh generation round for the session; when the round
// pauses with ActionsRequired, SubmitActionResults resumes it with exactly
// one result per requested call. Only one run may be active per session at
// a time; callers must serialize turns against the same session.
type Provider interface {
	CreateSession(ctx context.Context) (Session, error)
	// RetrieveSession returns ErrSessionNotFound for unknown ids.
	RetrieveSession(ctx context.Context, id string) (Session, error)
	DeleteSession(ctx context.Context, id string) (DeletionAck, error)

	AppendMessage(ctx context.Context, sessionID string, role protocol.Role, content string) error

	StartRun(ctx context.Context, sessionID string) (EventStream, error)
	SubmitActionResults(ctx context.Context, sessionID, runID string, results []protocol.ActionResult) (EventStream, error)

	// Instructions and UpdateInstructions expose the assistant's standing
	// instruction text; UpdateInstructions returns the stored result.
	Instructions(ctx context.Context) (string, error)
	UpdateInstructions(ctx context.Context, text string) (string, error)
}
