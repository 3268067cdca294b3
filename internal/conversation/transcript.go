package conversation

import "github.com/google/uuid"

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one committed entry of a conversation transcript.
type Message struct {
	ID   string
	Role Role
	Text string
}

// Transcript is the ordered, append-only sequence of committed messages.
// A streaming assistant response is not part of the transcript until its
// stream ends and it is committed as a Message.
type Transcript []Message

// Append returns the transcript extended by msg. The receiver is not
// mutated beyond its length, so callers keep value semantics.
func (t Transcript) Append(msg Message) Transcript {
	return append(t, msg)
}

// Last returns the most recent message, or nil for an empty transcript.
func (t Transcript) Last() *Message {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// NewUserMessage creates a committed user message.
func NewUserMessage(text string) Message {
	return Message{
		ID:   uuid.NewString(),
		Role: RoleUser,
		Text: text,
	}
}

// NewAssistantMessage creates a committed assistant message.
func NewAssistantMessage(text string) Message {
	return Message{
		ID:   uuid.NewString(),
		Role: RoleAssistant,
		Text: text,
	}
}
