package openai

import (
	"github.com/google/uuid"
	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/session"
)

// runStream adapts one streaming chat completion into the provider event
// iterator: content deltas become TextDelta events, and stream exhaustion
// becomes the terminal event. A completion that accumulated tool calls
// pauses as ActionsRequired with a fresh run id; otherwise it resolves as
// Completed. Either way the accumulated assistant message is appended to
// the session transcript so the next round sees it.
type runStream struct {
	client *Client
	sess   session.Session
	stream *ssestream.Stream[oai.ChatCompletionChunk]

	acc     oai.ChatCompletionAccumulator
	current protocol.Event
	done    bool
	err     error
}

func (s *runStream) Next() bool {
	if s.done {
		return false
	}

	for s.stream.Next() {
		chunk := s.stream.Current()
		s.acc.AddChunk(chunk)

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			s.current = protocol.TextDelta{Text: chunk.Choices[0].Delta.Content}
			return true
		}
	}

	s.done = true
	if err := s.stream.Err(); err != nil {
		s.err = err
		return false
	}

	s.current, s.err = s.finish()
	return s.err == nil
}

func (s *runStream) Current() protocol.Event { return s.current }

func (s *runStream) Err() error { return s.err }

func (s *runStream) Close() error { return s.stream.Close() }

// finish turns the accumulated completion into the terminal event and
// records the assistant message in the transcript.
func (s *runStream) finish() (protocol.Event, error) {
	if len(s.acc.Choices) == 0 {
		return nil, errEmptyCompletion
	}
	message := s.acc.Choices[0].Message

	var calls []protocol.ActionCall
	for _, tc := range message.ToolCalls {
		calls = append(calls, protocol.ActionCall{
			CallID:    tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	s.sess.AddMessage(protocol.Message{
		Role:        protocol.RoleAssistant,
		Content:     message.Content,
		ActionCalls: calls,
	})

	if len(calls) == 0 {
		return protocol.Completed{}, nil
	}

	runID := uuid.Must(uuid.NewV7()).String()
	s.client.rememberRun(runID, s.sess.ID(), calls)
	return protocol.ActionsRequired{RunID: runID, Actions: calls}, nil
}
