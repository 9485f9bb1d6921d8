package protocol

import "encoding/json"

// Frame is one unit of the client-visible incremental protocol: either a raw
// text fragment or a self-delimited JSON control object. Like Event, the
// variant set is closed.
//
// The framing is deliberately minimal to match the peer decoder: a chunk
// that parses as a JSON object is a control frame, anything else is literal
// assistant text. Consequently a control frame must marshal to a single JSON
// object and a text fragment must never be valid JSON-object syntax.
type Frame interface {
	isFrame()

	// MarshalWire returns the exact bytes the transport must deliver as one
	// chunk for this frame.
	MarshalWire() ([]byte, error)
}

// TextFragment is a piece of generated assistant text, delivered verbatim.
type TextFragment struct {
	Text string
}

// SessionAssigned opens every turn stream. It tells the client which session
// the turn runs against and raises the waiting indicator while the first
// generation round spins up.
type SessionAssigned struct {
	SessionID string
}

// ActionsPending marks a mid-turn pause: text has already streamed and the
// provider now wants actions executed before generation resumes. The client
// renders it as a paragraph break plus the waiting indicator.
type ActionsPending struct{}

func (TextFragment) isFrame()    {}
func (SessionAssigned) isFrame() {}
func (ActionsPending) isFrame()  {}

func (f TextFragment) MarshalWire() ([]byte, error) {
	return []byte(f.Text), nil
}

func (f SessionAssigned) MarshalWire() ([]byte, error) {
	return json.Marshal(struct {
		SessionID string `json:"session_id"`
		Wait      bool   `json:"wait"`
	}{SessionID: f.SessionID, Wait: true})
}

func (f ActionsPending) MarshalWire() ([]byte, error) {
	return json.Marshal(struct {
		LongWait bool `json:"longwait"`
	}{LongWait: true})
}
