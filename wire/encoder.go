// Package wire implements the byte-level turn protocol between the server
// and the browser client: an encoder that flushes one frame per transport
// chunk, and the peer-side consumer that rebuilds display state from those
// chunks.
//
// Framing is intentionally minimal: control frames are self-delimited JSON
// objects, text fragments are raw UTF-8, and the consumer tells them apart
// by attempting a JSON-object parse. The scheme only holds if every frame
// travels as exactly one transport chunk, which is why the encoder performs
// a single Write (plus flush) per frame.
package wire

import (
	"io"
	"net/http"

	"github.com/tailored-agentic-units/relay/core/protocol"
)

// Encoder serializes frames onto a transport writer. Each frame is written
// atomically and flushed immediately so the peer sees it without delay.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an Encoder over w. If w implements http.Flusher each
// frame is flushed after writing.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one frame as one transport chunk. Empty text fragments are
// skipped entirely so they cannot produce a zero-length chunk.
func (e *Encoder) Encode(frame protocol.Frame) error {
	data, err := frame.MarshalWire()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	if _, err := e.w.Write(data); err != nil {
		return err
	}

	if f, ok := e.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
