// Package driver implements the turn resolution loop: it resolves the
// session, runs generation rounds against the provider, executes requested
// actions between rounds, and emits the ordered frame sequence the client
// renders from.
//
//	d := driver.New(p)
//	err := d.RunTurn(ctx, "Hello", "", emit)
package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tailored-agentic-units/relay/actions"
	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/observability"
	"github.com/tailored-agentic-units/relay/provider"
)

// Invoker abstracts action execution for testability. The default
// implementation delegates to the global actions registry.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) string
}

type registryInvoker struct{}

func (registryInvoker) Invoke(ctx context.Context, name string, args json.RawMessage) string {
	return actions.Invoke(ctx, name, args)
}

// EmitFunc receives each frame as the driver produces it. The frame must be
// delivered (or rejected) before EmitFunc returns, so transport backpressure
// pauses the loop's event consumption. A non-nil error aborts the turn.
type EmitFunc func(frame protocol.Frame) error

// Option configures a Driver after construction.
type Option func(*Driver)

// WithInvoker overrides the default registry-backed action invoker.
func WithInvoker(inv Invoker) Option {
	return func(d *Driver) { d.invoker = inv }
}

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(d *Driver) { d.observer = o }
}

// WithMaxRounds bounds the number of generation rounds per turn.
// 0 means unlimited.
func WithMaxRounds(n int) Option {
	return func(d *Driver) { d.maxRounds = n }
}

// Driver runs one conversational turn to full resolution. Concurrent turns
// against the same session are not supported; callers must serialize them.
type Driver struct {
	provider  provider.Provider
	invoker   Invoker
	observer  observability.Observer
	maxRounds int
}

// New creates a Driver over the given provider.
func New(p provider.Provider, opts ...Option) *Driver {
	d := &Driver{
		provider: p,
		invoker:  registryInvoker{},
		observer: observability.NoOpObserver{},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// RunTurn drives a single turn for input, emitting frames through emit until
// the turn resolves.
//
// The session is resolved first: a given sessionID is retrieved from the
// provider, with retrieval failure tolerated by falling back to creation;
// creation failure is fatal and returns ErrSessionUnavailable before any
// frame is emitted. Once the user message is appended, the first frame is
// always SessionAssigned, followed by text fragments and ActionsPending
// pause markers as generation rounds interleave with action execution.
//
// Errors after the first frame leave the stream ended without a terminal
// marker; callers must not write anything further to the transport.
func (d *Driver) RunTurn(ctx context.Context, input, sessionID string, emit EmitFunc) error {
	sessionID, err := d.resolveSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := d.provider.AppendMessage(ctx, sessionID, protocol.RoleUser, input); err != nil {
		return fmt.Errorf("failed to append user message: %w", err)
	}

	d.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnStart,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "driver.RunTurn",
		Data: map[string]any{
			"session_id":   sessionID,
			"input_length": len(input),
		},
	})

	if err := emit(protocol.SessionAssigned{SessionID: sessionID}); err != nil {
		return err
	}

	var pending []protocol.ActionResult
	var runID string
	resolved := false

	for round := 0; !resolved; round++ {
		if d.maxRounds > 0 && round >= d.maxRounds {
			d.observeError(ctx, sessionID, ErrMaxRounds)
			return ErrMaxRounds
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		d.observer.OnEvent(ctx, observability.Event{
			Type:      EventRoundStart,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "driver.RunTurn",
			Data: map[string]any{
				"session_id": sessionID,
				"round":      round + 1,
				"resuming":   len(pending) > 0,
			},
		})

		// Exactly one provider call per round: a fresh run, or a resumption
		// carrying the previous round's action results.
		var stream provider.EventStream
		if len(pending) == 0 {
			stream, err = d.provider.StartRun(ctx, sessionID)
		} else {
			stream, err = d.provider.SubmitActionResults(ctx, sessionID, runID, pending)
			pending = nil
		}
		if err != nil {
			d.observeError(ctx, sessionID, err)
			return fmt.Errorf("%w: %v", ErrStreamAborted, err)
		}

		textLen := 0
		paused := false

	events:
		for stream.Next() {
			switch ev := stream.Current().(type) {
			case protocol.TextDelta:
				if err := emit(protocol.TextFragment{Text: ev.Text}); err != nil {
					stream.Close()
					return err
				}
				textLen += len(ev.Text)

			case protocol.Completed:
				resolved = true
				break events

			case protocol.ActionsRequired:
				// Stop reading this stream immediately; the batch must be
				// executed in provider order, one result per call.
				runID = ev.RunID
				pending = d.executeActions(ctx, sessionID, ev.Actions)
				paused = true
				break events
			}
		}

		streamErr := stream.Err()
		closeErr := stream.Close()

		if streamErr != nil {
			d.observeError(ctx, sessionID, streamErr)
			return fmt.Errorf("%w: %v", ErrStreamAborted, streamErr)
		}
		if closeErr != nil {
			d.observeError(ctx, sessionID, closeErr)
			return fmt.Errorf("%w: %v", ErrStreamAborted, closeErr)
		}

		// A stream that ends with neither a completion nor an action request
		// is a provider failure; the frame stream ends silently.
		if !resolved && !paused {
			d.observeError(ctx, sessionID, ErrStreamAborted)
			return ErrStreamAborted
		}

		if textLen > 0 && !resolved {
			if err := emit(protocol.ActionsPending{}); err != nil {
				return err
			}
		}
	}

	d.observer.OnEvent(ctx, observability.Event{
		Type:      EventTurnComplete,
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "driver.RunTurn",
		Data:      map[string]any{"session_id": sessionID},
	})

	return nil
}

// executeActions runs an action batch sequentially, preserving provider
// order, and returns exactly one result per requested call. Unknown action
// names come back as error-shaped results, never as loop failures.
func (d *Driver) executeActions(ctx context.Context, sessionID string, calls []protocol.ActionCall) []protocol.ActionResult {
	results := make([]protocol.ActionResult, 0, len(calls))

	for _, call := range calls {
		d.observer.OnEvent(ctx, observability.Event{
			Type:      EventActionCall,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "driver.executeActions",
			Data: map[string]any{
				"session_id": sessionID,
				"call_id":    call.CallID,
				"name":       call.Name,
			},
		})

		output := d.invoker.Invoke(ctx, call.Name, json.RawMessage(call.Arguments))
		results = append(results, protocol.ActionResult{
			CallID: call.CallID,
			Output: output,
		})

		d.observer.OnEvent(ctx, observability.Event{
			Type:      EventActionComplete,
			Level:     observability.LevelVerbose,
			Timestamp: time.Now(),
			Source:    "driver.executeActions",
			Data: map[string]any{
				"session_id":    sessionID,
				"call_id":       call.CallID,
				"name":          call.Name,
				"output_length": len(output),
			},
		})
	}

	return results
}

func (d *Driver) resolveSession(ctx context.Context, sessionID string) (string, error) {
	if sessionID != "" {
		sess, err := d.provider.RetrieveSession(ctx, sessionID)
		if err == nil {
			return sess.ID, nil
		}
		// Retrieval failure is transient: fall through to creation.
		d.observer.OnEvent(ctx, observability.Event{
			Type:      EventSessionFallback,
			Level:     observability.LevelWarning,
			Timestamp: time.Now(),
			Source:    "driver.resolveSession",
			Data: map[string]any{
				"session_id": sessionID,
				"error":      err.Error(),
			},
		})
	}

	sess, err := d.provider.CreateSession(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	return sess.ID, nil
}

func (d *Driver) observeError(ctx context.Context, sessionID string, err error) {
	d.observer.OnEvent(ctx, observability.Event{
		Type:      EventError,
		Level:     observability.LevelError,
		Timestamp: time.Now(),
		Source:    "driver.RunTurn",
		Data: map[string]any{
			"session_id": sessionID,
			"error":      err.Error(),
		},
	})
}
