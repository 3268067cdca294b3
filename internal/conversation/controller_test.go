package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roost/internal/runtime"
)

// fakeHandle is a scripted runtime handle. Events in script are delivered
// to subscribers during Prompt, before it returns promptErr.
type fakeHandle struct {
	mu           sync.Mutex
	handlers     map[int]func(runtime.Event)
	nextID       int
	script       []runtime.Event
	promptErr    error
	subscribeErr error

	subscribed     bool
	subscribeOrder []string // records "subscribe"/"prompt" ordering
	unsubscribed   bool
}

func newFakeHandle(script ...runtime.Event) *fakeHandle {
	return &fakeHandle{
		handlers: make(map[int]func(runtime.Event)),
		script:   script,
	}
}

func (h *fakeHandle) Subscribe(handler func(runtime.Event)) (func(), error) {
	if h.subscribeErr != nil {
		return nil, h.subscribeErr
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.handlers[id] = handler
	h.subscribed = true
	h.subscribeOrder = append(h.subscribeOrder, "subscribe")
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.handlers, id)
		h.unsubscribed = true
	}, nil
}

func (h *fakeHandle) Prompt(ctx context.Context, text string) error {
	h.mu.Lock()
	h.subscribeOrder = append(h.subscribeOrder, "prompt")
	handlers := make([]func(runtime.Event), 0, len(h.handlers))
	for _, handler := range h.handlers {
		handlers = append(handlers, handler)
	}
	script := h.script
	h.mu.Unlock()

	for _, event := range script {
		for _, handler := range handlers {
			handler(event)
		}
	}
	return h.promptErr
}

func delta(messageID, text string) runtime.Event {
	return runtime.Event{
		Kind:  runtime.EventTextDelta,
		Delta: &runtime.TextDelta{MessageID: messageID, Delta: text},
	}
}

func messageEnd(text string) runtime.Event {
	return runtime.Event{
		Kind: runtime.EventMessageEnd,
		End: &runtime.MessageEnd{
			Message: runtime.AgentMessage{
				Role:       runtime.RoleAssistant,
				StopReason: "end_turn",
				Content: []runtime.ContentBlock{
					{Type: runtime.ContentTypeText, Text: text},
				},
			},
		},
	}
}

func TestSend_StreamedExchange(t *testing.T) {
	handle := newFakeHandle(
		delta("msg-1", "Hi"),
		delta("msg-1", " there"),
		messageEnd("Hi there"),
	)

	controller := NewController()
	transcript, err := controller.Send(context.Background(), Transcript{}, "hello", handle)
	require.NoError(t, err)

	require.Len(t, transcript, 2)
	assert.Equal(t, RoleUser, transcript[0].Role)
	assert.Equal(t, "hello", transcript[0].Text)
	assert.Equal(t, RoleAssistant, transcript[1].Role)
	assert.Equal(t, "Hi there", transcript[1].Text)

	assert.True(t, handle.unsubscribed, "stream must be closed on return")
}

func TestSend_SubscribeHappensBeforePrompt(t *testing.T) {
	handle := newFakeHandle(messageEnd("ok"))

	controller := NewController()
	_, err := controller.Send(context.Background(), Transcript{}, "hello", handle)
	require.NoError(t, err)

	require.Equal(t, []string{"subscribe", "prompt"}, handle.subscribeOrder)
}

func TestSend_BlankText(t *testing.T) {
	controller := NewController()

	transcript, err := controller.Send(context.Background(), Transcript{}, "   ", newFakeHandle())
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, transcript)
}

func TestSend_NilHandle(t *testing.T) {
	controller := NewController()

	transcript, err := controller.Send(context.Background(), Transcript{}, "hello", nil)
	assert.ErrorIs(t, err, ErrAgentUnavailable)
	assert.Empty(t, transcript)
}

func TestSend_PromptFailureBecomesTranscriptMessage(t *testing.T) {
	handle := newFakeHandle()
	handle.promptErr = errors.New("model overloaded")

	controller := NewController()
	transcript, err := controller.Send(context.Background(), Transcript{}, "hello", handle)
	require.NoError(t, err, "prompt failures must not escape Send")

	require.Len(t, transcript, 2)
	assert.Equal(t, RoleUser, transcript[0].Role)
	assert.Equal(t, RoleAssistant, transcript[1].Role)
	assert.Contains(t, transcript[1].Text, "model overloaded")

	assert.True(t, handle.unsubscribed, "stream must be closed on the error path")
}

func TestSend_SubscribeFailureBecomesTranscriptMessage(t *testing.T) {
	handle := newFakeHandle()
	handle.subscribeErr = errors.New("stream unavailable")

	controller := NewController()
	transcript, err := controller.Send(context.Background(), Transcript{}, "hello", handle)
	require.NoError(t, err)

	require.Len(t, transcript, 2)
	assert.Contains(t, transcript[1].Text, "stream unavailable")
}

func TestSend_UserMessageAppendedBeforeFailure(t *testing.T) {
	handle := newFakeHandle()
	handle.promptErr = errors.New("network down")

	controller := NewController()
	transcript, err := controller.Send(context.Background(), Transcript{}, "important thought", handle)
	require.NoError(t, err)

	// The user's intent is recorded even though sending failed.
	require.NotEmpty(t, transcript)
	assert.Equal(t, "important thought", transcript[0].Text)
}

func TestSend_NonTextBlocksIgnored(t *testing.T) {
	end := runtime.Event{
		Kind: runtime.EventMessageEnd,
		End: &runtime.MessageEnd{
			Message: runtime.AgentMessage{
				Role: runtime.RoleAssistant,
				Content: []runtime.ContentBlock{
					{Type: runtime.ContentTypeText, Text: "before"},
					{Type: "tool_use", Text: "ls -la"},
					{Type: runtime.ContentTypeText, Text: " after"},
				},
			},
		},
	}
	handle := newFakeHandle(end)

	controller := NewController()
	transcript, err := controller.Send(context.Background(), Transcript{}, "hello", handle)
	require.NoError(t, err)

	require.Len(t, transcript, 2)
	assert.Equal(t, "before after", transcript[1].Text)
}

func TestSend_RuntimeErrorMessageSurfaced(t *testing.T) {
	end := runtime.Event{
		Kind: runtime.EventMessageEnd,
		End: &runtime.MessageEnd{
			Message: runtime.AgentMessage{
				Role:         runtime.RoleAssistant,
				StopReason:   "error",
				ErrorMessage: "credit exhausted",
			},
		},
	}
	handle := newFakeHandle(end)

	controller := NewController()
	transcript, err := controller.Send(context.Background(), Transcript{}, "hello", handle)
	require.NoError(t, err)

	require.Len(t, transcript, 2)
	assert.Contains(t, transcript[1].Text, "credit exhausted")
}

func TestSend_DeltaHandlerObservesArrivalOrder(t *testing.T) {
	handle := newFakeHandle(
		delta("msg-1", "a"),
		delta("msg-1", "b"),
		delta("msg-1", "c"),
		messageEnd("abc"),
	)

	var seen []string
	controller := NewController(WithDeltaHandler(func(d string) {
		seen = append(seen, d)
	}))

	_, err := controller.Send(context.Background(), Transcript{}, "hello", handle)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestSend_CancelledContext(t *testing.T) {
	// A handle whose Prompt blocks until the context is cancelled.
	handle := &blockingHandle{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	controller := NewController()
	transcript, err := controller.Send(ctx, Transcript{}, "hello", handle)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.ErrorIs(t, err, context.Canceled)

	// The user message is still recorded, and the stream was closed.
	require.Len(t, transcript, 1)
	assert.True(t, handle.unsubscribed)
}

type blockingHandle struct {
	mu           sync.Mutex
	unsubscribed bool
}

func (h *blockingHandle) Subscribe(func(runtime.Event)) (func(), error) {
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.unsubscribed = true
	}, nil
}

func (h *blockingHandle) Prompt(ctx context.Context, text string) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestSend_SerializesPerHandle(t *testing.T) {
	handle := newFakeHandle(messageEnd("ok"))
	controller := NewController()

	var inFlight, maxInFlight int
	var mu sync.Mutex
	track := func(delta int) {
		mu.Lock()
		defer mu.Unlock()
		inFlight += delta
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
	}

	// Wrap Prompt to observe overlap.
	wrapped := &observingHandle{inner: handle, onPrompt: func() {
		track(1)
		time.Sleep(20 * time.Millisecond)
		track(-1)
	}}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := controller.Send(context.Background(), Transcript{}, "hello", wrapped)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight, "sends on one handle must not overlap")
}

type observingHandle struct {
	inner    *fakeHandle
	onPrompt func()
}

func (h *observingHandle) Subscribe(handler func(runtime.Event)) (func(), error) {
	return h.inner.Subscribe(handler)
}

func (h *observingHandle) Prompt(ctx context.Context, text string) error {
	h.onPrompt()
	return h.inner.Prompt(ctx, text)
}
