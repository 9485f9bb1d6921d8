package protocol

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is a single entry in a session transcript.
//
// Assistant messages that paused for actions carry ActionCalls; action
// result messages carry the CallID that correlates back to the request.
type Message struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	CallID      string       `json:"call_id,omitempty"`
	ActionCalls []ActionCall `json:"action_calls,omitempty"`
}

// NewMessage creates a Message with the given role and content.
// Use struct literals directly when setting action call fields.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}
