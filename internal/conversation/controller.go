package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"roost/internal/runtime"
	"roost/pkg/logging"
)

// ErrEmptyMessage is returned by Send when the user text is blank after
// trimming.
var ErrEmptyMessage = errors.New("message text is blank")

// ErrAgentUnavailable is returned by Send when there is no runtime handle
// to talk to (typically because no credential resolved for the provider).
var ErrAgentUnavailable = errors.New("agent runtime unavailable")

// SendError wraps a failure of the exchange that is not attributable to
// the runtime's prompt processing, such as caller cancellation.
type SendError struct {
	Err error
}

// Error implements the error interface.
func (e *SendError) Error() string {
	return "send failed: " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *SendError) Unwrap() error {
	return e.Err
}

// messageEndGrace bounds the wait for a final message after the prompt
// call has returned. Runtimes deliver the completion notification before
// or immediately after the call result; if it never arrives the
// accumulated deltas are committed instead.
const messageEndGrace = 10 * time.Second

// Controller drives one prompt/response exchange against an agent
// runtime, streaming partial text into an accumulator and committing the
// finished assistant message to the transcript.
//
// Sends on the same handle are serialized: a second Send blocks until the
// first completes. Sends on different handles proceed independently.
type Controller struct {
	handleLocks sync.Map // runtime.Handle -> *sync.Mutex
	onDelta     func(delta string)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithDeltaHandler registers a callback invoked for every text delta in
// arrival order. Used by the REPL to render the response as it streams.
func WithDeltaHandler(fn func(delta string)) ControllerOption {
	return func(c *Controller) {
		c.onDelta = fn
	}
}

// NewController creates a Controller.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send submits userText to the runtime and returns the transcript with
// the user message and the committed assistant response appended.
//
// The user message is appended before any network activity so the
// transcript reflects intent even if the exchange fails. Prompt failures
// do not escape Send: they are committed as a synthetic assistant message
// describing the error. Only validation failures (blank text, nil
// handle) and caller cancellation return an error.
func (c *Controller) Send(ctx context.Context, transcript Transcript, userText string, handle runtime.Handle) (Transcript, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return transcript, ErrEmptyMessage
	}
	if handle == nil {
		return transcript, ErrAgentUnavailable
	}

	mu := c.lockFor(handle)
	mu.Lock()
	defer mu.Unlock()

	transcript = transcript.Append(NewUserMessage(userText))

	session := newStreamSession(c.onDelta)

	// Subscribe before prompting so no event can slip between prompt
	// dispatch and stream registration.
	unsubscribe, err := handle.Subscribe(session.handleEvent)
	if err != nil {
		logging.Warn("Conversation", "failed to open event stream: %v", err)
		return transcript.Append(NewAssistantMessage(exchangeErrorText(err))), nil
	}
	defer unsubscribe()

	if err := handle.Prompt(ctx, userText); err != nil {
		if ctx.Err() != nil {
			return transcript, &SendError{Err: ctx.Err()}
		}
		logging.Warn("Conversation", "prompt failed: %v", err)
		return transcript.Append(NewAssistantMessage(exchangeErrorText(err))), nil
	}

	grace := time.NewTimer(messageEndGrace)
	defer grace.Stop()

	select {
	case msg := <-session.done:
		return transcript.Append(commitAssistantMessage(msg)), nil

	case <-grace.C:
		// The runtime finished the call without a completion event.
		if text := session.accumulatedText(); text != "" {
			return transcript.Append(NewAssistantMessage(text)), nil
		}
		return transcript.Append(NewAssistantMessage("The agent returned no response.")), nil

	case <-ctx.Done():
		return transcript, &SendError{Err: ctx.Err()}
	}
}

// lockFor returns the per-handle send mutex, creating it on first use.
func (c *Controller) lockFor(handle runtime.Handle) *sync.Mutex {
	actual, _ := c.handleLocks.LoadOrStore(handle, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// commitAssistantMessage builds the committed assistant message from the
// runtime's final message: text-kind content blocks concatenated in block
// order. Non-text blocks (tool calls and similar) are not transcript
// material.
func commitAssistantMessage(msg runtime.AgentMessage) Message {
	if msg.ErrorMessage != "" {
		return NewAssistantMessage(exchangeErrorText(errors.New(msg.ErrorMessage)))
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == runtime.ContentTypeText {
			sb.WriteString(block.Text)
		}
	}
	return NewAssistantMessage(sb.String())
}

func exchangeErrorText(err error) string {
	return fmt.Sprintf("The agent could not process your message: %v", err)
}

// streamSession accumulates one assistant response. It is owned by a
// single Send call; handleEvent may be invoked from the transport
// goroutine while Send blocks in Prompt.
type streamSession struct {
	mu          sync.Mutex
	accumulated strings.Builder
	onDelta     func(string)
	done        chan runtime.AgentMessage
}

func newStreamSession(onDelta func(string)) *streamSession {
	return &streamSession{
		onDelta: onDelta,
		done:    make(chan runtime.AgentMessage, 1),
	}
}

func (s *streamSession) handleEvent(event runtime.Event) {
	switch event.Kind {
	case runtime.EventTextDelta:
		if event.Delta == nil {
			return
		}
		s.mu.Lock()
		s.accumulated.WriteString(event.Delta.Delta)
		s.mu.Unlock()
		if s.onDelta != nil {
			s.onDelta(event.Delta.Delta)
		}

	case runtime.EventMessageEnd:
		if event.End == nil || event.End.Message.Role != runtime.RoleAssistant {
			return
		}
		// First completion wins; the channel is buffered so the
		// transport goroutine never blocks here.
		select {
		case s.done <- event.End.Message:
		default:
		}
	}
}

func (s *streamSession) accumulatedText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accumulated.String()
}
