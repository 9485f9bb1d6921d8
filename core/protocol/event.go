// Package protocol defines the canonical types exchanged between the turn
// driver, the generation provider, and the wire layer: provider events,
// action calls and results, conversation messages, and client-visible frames.
package protocol

// Event is a discriminated generation event emitted by the provider while a
// run is in progress. The variant set is closed: TextDelta, Completed, and
// ActionsRequired are the only implementations, so a type switch over Event
// covers every case the driver has to handle.
//
// Within one provider stream, Completed and ActionsRequired are terminal:
// no further events follow either of them.
type Event interface {
	isEvent()
}

// TextDelta carries an incremental fragment of generated assistant text.
type TextDelta struct {
	Text string
}

// Completed signals that the run finished and the turn is fully resolved.
type Completed struct{}

// ActionsRequired signals that the run paused waiting for action results.
// Actions preserve provider order; the driver must execute them
// sequentially and submit exactly one result per call.
type ActionsRequired struct {
	RunID   string
	Actions []ActionCall
}

func (TextDelta) isEvent()       {}
func (Completed) isEvent()       {}
func (ActionsRequired) isEvent() {}
