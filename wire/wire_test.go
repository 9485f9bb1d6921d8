package wire_test

import (
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/relay/core/protocol"
	"github.com/tailored-agentic-units/relay/wire"
)

// chunkWriter records each Write call as one chunk and counts flushes,
// standing in for a flushable HTTP response writer.
type chunkWriter struct {
	chunks  [][]byte
	flushes int
}

func (w *chunkWriter) Write(p []byte) (int, error) {
	buf := make([]byte, len(p))
	copy(buf, p)
	w.chunks = append(w.chunks, buf)
	return len(p), nil
}

func (w *chunkWriter) Flush() {
	w.flushes++
}

// chunkReader serves one pre-cut chunk per Read call, then EOF.
type chunkReader struct {
	chunks [][]byte
	pos    int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.chunks) {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[r.pos])
	r.pos++
	return n, nil
}

func mustWire(t *testing.T, f protocol.Frame) []byte {
	t.Helper()
	data, err := f.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire() failed: %v", err)
	}
	return data
}

func TestEncoder_OneChunkPerFrame(t *testing.T) {
	w := &chunkWriter{}
	enc := wire.NewEncoder(w)

	frames := []protocol.Frame{
		protocol.SessionAssigned{SessionID: "sess_1"},
		protocol.TextFragment{Text: "Hello"},
		protocol.ActionsPending{},
		protocol.TextFragment{Text: " world"},
	}

	for _, f := range frames {
		if err := enc.Encode(f); err != nil {
			t.Fatalf("Encode(%T) failed: %v", f, err)
		}
	}

	if len(w.chunks) != len(frames) {
		t.Fatalf("got %d chunks, want %d (one per frame)", len(w.chunks), len(frames))
	}
	if w.flushes != len(frames) {
		t.Errorf("got %d flushes, want %d (one per frame)", w.flushes, len(frames))
	}

	var ctrl map[string]any
	if err := json.Unmarshal(w.chunks[0], &ctrl); err != nil {
		t.Fatalf("first chunk is not a JSON control frame: %v", err)
	}
	if ctrl["session_id"] != "sess_1" || ctrl["wait"] != true {
		t.Errorf("control frame = %v", ctrl)
	}

	if string(w.chunks[1]) != "Hello" {
		t.Errorf("text chunk = %q, want raw text", w.chunks[1])
	}
}

func TestEncoder_SkipsEmptyText(t *testing.T) {
	w := &chunkWriter{}
	enc := wire.NewEncoder(w)

	if err := enc.Encode(protocol.TextFragment{Text: ""}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(w.chunks) != 0 {
		t.Errorf("got %d chunks for empty fragment, want 0", len(w.chunks))
	}
}

func TestConsumer_ReconstructsTurn(t *testing.T) {
	c := wire.NewConsumer()
	c.StartTurn("Tell me about cats")

	r := &chunkReader{chunks: [][]byte{
		mustWire(t, protocol.SessionAssigned{SessionID: "sess_9"}),
		[]byte("Cats are"),
		[]byte(" great."),
		mustWire(t, protocol.ActionsPending{}),
		[]byte("Here is a fact."),
	}}

	if err := c.Consume(r); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if c.SessionID() != "sess_9" {
		t.Errorf("got session id %q, want %q", c.SessionID(), "sess_9")
	}
	if c.Waiting() {
		t.Error("waiting indicator still raised after stream end")
	}

	msgs := c.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want user + assistant", len(msgs))
	}
	if msgs[0].Role != protocol.RoleUser || msgs[0].Content != "Tell me about cats" {
		t.Errorf("user message = %+v", msgs[0])
	}
	want := "Cats are great.\n\nHere is a fact."
	if msgs[1].Role != protocol.RoleAssistant || msgs[1].Content != want {
		t.Errorf("assistant content = %q, want %q", msgs[1].Content, want)
	}
}

func TestConsumer_WaitingTransitions(t *testing.T) {
	c := wire.NewConsumer()
	c.StartTurn("hi")

	c.Apply(mustWire(t, protocol.SessionAssigned{SessionID: "sess_1"}))
	if !c.Waiting() {
		t.Error("wait frame did not raise waiting indicator")
	}

	c.Apply([]byte("text"))
	if c.Waiting() {
		t.Error("text fragment did not lower waiting indicator")
	}

	c.Apply(mustWire(t, protocol.ActionsPending{}))
	if !c.Waiting() {
		t.Error("longwait frame did not raise waiting indicator")
	}
}

func TestConsumer_JSONLookalikeText(t *testing.T) {
	tests := []struct {
		name       string
		chunk      string
		wantInText bool
	}{
		{name: "array is text", chunk: `["a","b"]`, wantInText: true},
		{name: "broken object is text", chunk: `{oops`, wantInText: true},
		{name: "number is text", chunk: `42`, wantInText: true},
		// The documented framing hazard: a real JSON object in assistant
		// text is swallowed as a control frame.
		{name: "unknown-key object is dropped", chunk: `{"foo":1}`, wantInText: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := wire.NewConsumer()
			c.StartTurn("hi")
			c.Apply([]byte(tt.chunk))

			content := c.Messages()[1].Content
			if got := strings.Contains(content, tt.chunk); got != tt.wantInText {
				t.Errorf("content = %q, contains chunk = %v, want %v", content, got, tt.wantInText)
			}
		})
	}
}

func TestConsumer_TextWriterMirror(t *testing.T) {
	var b strings.Builder
	c := wire.NewConsumer(wire.WithTextWriter(&b))
	c.StartTurn("hi")

	c.Apply([]byte("part one"))
	c.Apply(mustWire(t, protocol.ActionsPending{}))
	c.Apply([]byte("part two"))

	if b.String() != "part one\n\npart two" {
		t.Errorf("mirrored text = %q", b.String())
	}
}

func TestConsumer_SeededSessionID(t *testing.T) {
	c := wire.NewConsumer()
	c.SetSessionID("sess_persisted")

	if c.SessionID() != "sess_persisted" {
		t.Fatalf("got %q, want seeded id", c.SessionID())
	}

	// A fresh assignment from the stream replaces it.
	c.Apply(mustWire(t, protocol.SessionAssigned{SessionID: "sess_new"}))
	if c.SessionID() != "sess_new" {
		t.Errorf("got %q, want stream-assigned id", c.SessionID())
	}
}
