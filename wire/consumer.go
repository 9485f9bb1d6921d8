package wire

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/relay/core/protocol"
)

// DisplayMessage is one rendered conversation entry on the client side.
// The assistant entry for the current turn starts empty and grows as text
// fragments arrive.
type DisplayMessage struct {
	ID        string
	Role      protocol.Role
	CreatedAt time.Time
	Content   string
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithTextWriter mirrors assistant text (including pause paragraph breaks)
// to w as it arrives, for terminal-style rendering.
func WithTextWriter(w io.Writer) ConsumerOption {
	return func(c *Consumer) { c.textW = w }
}

// Consumer rebuilds display state from a turn stream: the message list, the
// waiting indicator, and the session identifier to persist for the next
// turn. One Consumer tracks one conversation; run StartTurn then Consume
// once per turn. Snapshot accessors are safe to call concurrently with the
// reader loop.
type Consumer struct {
	mu        sync.RWMutex
	sessionID string
	messages  []DisplayMessage
	waiting   bool
	textW     io.Writer
}

// NewConsumer creates an empty Consumer.
func NewConsumer(opts ...ConsumerOption) *Consumer {
	c := &Consumer{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSessionID seeds the session identifier from client-side persistence,
// before the first turn of a resumed conversation.
func (c *Consumer) SetSessionID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = id
}

// SessionID returns the most recently assigned session identifier.
func (c *Consumer) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Waiting reports whether the waiting indicator is raised.
func (c *Consumer) Waiting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.waiting
}

// Messages returns a defensive copy of the rendered message list.
func (c *Consumer) Messages() []DisplayMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	copied := make([]DisplayMessage, len(c.messages))
	copy(copied, c.messages)
	return copied
}

// StartTurn records the user's message and opens the empty assistant entry
// the incoming stream will fill.
func (c *Consumer) StartTurn(input string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages,
		DisplayMessage{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Role:      protocol.RoleUser,
			CreatedAt: now,
			Content:   input,
		},
		DisplayMessage{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Role:      protocol.RoleAssistant,
			CreatedAt: now,
		},
	)
}

// Consume runs the reader loop over one turn stream until it ends. Each
// Read is treated as one frame, per the package framing contract. Stream
// end, normal or not, lowers the waiting indicator; the caller persists
// SessionID afterwards.
func (c *Consumer) Consume(r io.Reader) error {
	buf := make([]byte, 64*1024)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			c.Apply(buf[:n])
		}
		if err != nil {
			c.mu.Lock()
			c.waiting = false
			c.mu.Unlock()

			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// Apply processes one received chunk: a parseable JSON object is a control
// frame, anything else is literal assistant text.
func (c *Consumer) Apply(chunk []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ctrl, ok := decodeControl(chunk); ok {
		if id, ok := ctrl["session_id"].(string); ok {
			c.sessionID = id
		}
		if _, ok := ctrl["wait"]; ok {
			c.waiting = true
		}
		if _, ok := ctrl["longwait"]; ok {
			c.appendAssistantText("\n\n")
			c.waiting = true
		}
		return
	}

	c.appendAssistantText(string(chunk))
	c.waiting = false
}

// appendAssistantText grows the in-progress assistant entry; callers hold
// the lock.
func (c *Consumer) appendAssistantText(text string) {
	if c.textW != nil {
		io.WriteString(c.textW, text)
	}

	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == protocol.RoleAssistant {
			c.messages[i].Content += text
			return
		}
	}

	// Text arrived without StartTurn; open an assistant entry for it.
	c.messages = append(c.messages, DisplayMessage{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Role:      protocol.RoleAssistant,
		CreatedAt: time.Now(),
		Content:   text,
	})
}

func decodeControl(chunk []byte) (map[string]any, bool) {
	trimmed := bytes.TrimSpace(chunk)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var ctrl map[string]any
	if err := json.Unmarshal(trimmed, &ctrl); err != nil {
		return nil, false
	}
	return ctrl, true
}
