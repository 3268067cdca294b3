package runtime

import "context"

// Role identifies the author of an agent message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentTypeText is the content block type carrying assistant text.
// Other block types (tool calls, attachments) pass through the event
// stream but are not rendered into the transcript.
const ContentTypeText = "text"

// ContentBlock is one element of an agent message's content. Type
// discriminates the union; only text blocks populate Text.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// AgentMessage is a complete message as reported by the agent runtime at
// the end of a response stream.
type AgentMessage struct {
	Role         Role           `json:"role"`
	Content      []ContentBlock `json:"content"`
	StopReason   string         `json:"stopReason,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

// EventKind discriminates stream events.
type EventKind string

const (
	// EventTextDelta carries an incremental fragment of assistant text.
	EventTextDelta EventKind = "text_delta"

	// EventMessageEnd marks a message as complete and carries its final
	// content blocks.
	EventMessageEnd EventKind = "message_end"

	// EventOther covers runtime events this client does not interpret.
	EventOther EventKind = "other"
)

// TextDelta is the payload of an EventTextDelta event. Deltas are totally
// ordered per message id by the runtime; subscribers apply them in
// arrival order.
type TextDelta struct {
	MessageID string `json:"messageId"`
	Delta     string `json:"delta"`
}

// MessageEnd is the payload of an EventMessageEnd event.
type MessageEnd struct {
	Message AgentMessage `json:"message"`
}

// Event is one item of the agent's event stream.
type Event struct {
	Kind  EventKind
	Delta *TextDelta
	End   *MessageEnd
}

// Handle is one connection to an agent runtime. Subscribe registers an
// event handler and returns an unsubscribe function; Prompt submits user
// text and blocks until the runtime finishes or fails the exchange.
//
// Events may be delivered on a different goroutine than the Prompt
// caller. Implementations must deliver events for one message in order.
type Handle interface {
	Subscribe(handler func(Event)) (unsubscribe func(), err error)
	Prompt(ctx context.Context, text string) error
}
