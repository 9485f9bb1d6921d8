// Package session manages conversation transcripts for the generation
// provider: one Session per provider-held conversation, addressed by an
// opaque identifier, grouped under a Store that owns the create/retrieve/
// delete lifecycle.
package session

import (
	"github.com/tailored-agentic-units/relay/core/protocol"
)

// Session holds an ordered, append-only sequence of conversation messages.
// Implementations must be safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a message to the conversation history.
	AddMessage(msg protocol.Message)
	// Messages returns a defensive copy of the conversation history.
	Messages() []protocol.Message
	// Clear resets the conversation history.
	Clear()
}
