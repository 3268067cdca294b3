package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"roost/pkg/logging"
)

// Notification methods the agent runtime emits over the MCP session.
const (
	methodChatDelta   = "notifications/chat/delta"
	methodChatMessage = "notifications/chat/message"
)

// promptToolName is the runtime tool that submits user text and blocks
// until the exchange completes.
const promptToolName = "prompt"

// DefaultPromptTimeout bounds a single prompt exchange.
const DefaultPromptTimeout = 5 * time.Minute

// MCPHandle is a Handle backed by an MCP server reached over SSE.
// Stream events arrive as JSON-RPC notifications; prompting is a tool
// call that returns when the runtime has finished the response.
type MCPHandle struct {
	endpoint string
	timeout  time.Duration

	mu          sync.RWMutex
	client      *client.Client
	subscribers map[int]func(Event)
	nextSubID   int
}

// MCPHandleOption configures an MCPHandle.
type MCPHandleOption func(*MCPHandle)

// WithPromptTimeout overrides the per-prompt timeout.
func WithPromptTimeout(d time.Duration) MCPHandleOption {
	return func(h *MCPHandle) {
		h.timeout = d
	}
}

// NewMCPHandle creates a handle for the agent runtime at endpoint.
// Connect must be called before use.
func NewMCPHandle(endpoint string, opts ...MCPHandleOption) *MCPHandle {
	h := &MCPHandle{
		endpoint:    endpoint,
		timeout:     DefaultPromptTimeout,
		subscribers: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Connect establishes the SSE session and performs the MCP handshake.
func (h *MCPHandle) Connect(ctx context.Context) error {
	sseClient, err := client.NewSSEMCPClient(h.endpoint)
	if err != nil {
		return fmt.Errorf("failed to create SSE client: %w", err)
	}

	if err := sseClient.Start(ctx); err != nil {
		return fmt.Errorf("failed to start SSE client: %w", err)
	}

	sseClient.OnNotification(func(notification mcp.JSONRPCNotification) {
		h.dispatch(translateNotification(notification))
	})

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    "roost",
		Version: "1.0.0",
	}

	if _, err := sseClient.Initialize(ctx, req); err != nil {
		sseClient.Close()
		return fmt.Errorf("initialization failed: %w", err)
	}

	h.mu.Lock()
	h.client = sseClient
	h.mu.Unlock()

	logging.Info("Runtime", "connected to agent runtime at %s", h.endpoint)
	return nil
}

// Close tears down the MCP session.
func (h *MCPHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.client == nil {
		return nil
	}
	err := h.client.Close()
	h.client = nil
	return err
}

// Subscribe implements Handle.
func (h *MCPHandle) Subscribe(handler func(Event)) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSubID
	h.nextSubID++
	h.subscribers[id] = handler

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers, id)
	}, nil
}

// Prompt implements Handle. It calls the runtime's prompt tool and blocks
// until the exchange completes; a tool-level error result is returned as
// an error.
func (h *MCPHandle) Prompt(ctx context.Context, text string) error {
	h.mu.RLock()
	mcpClient := h.client
	h.mu.RUnlock()

	if mcpClient == nil {
		return fmt.Errorf("not connected")
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = promptToolName
	req.Params.Arguments = map[string]interface{}{
		"text": text,
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	result, err := mcpClient.CallTool(timeoutCtx, req)
	if err != nil {
		return fmt.Errorf("prompt call failed: %w", err)
	}

	if result.IsError {
		for _, content := range result.Content {
			if textContent, ok := mcp.AsTextContent(content); ok {
				return fmt.Errorf("prompt rejected: %s", textContent.Text)
			}
		}
		return fmt.Errorf("prompt rejected")
	}

	return nil
}

func (h *MCPHandle) dispatch(event Event) {
	h.mu.RLock()
	handlers := make([]func(Event), 0, len(h.subscribers))
	for _, handler := range h.subscribers {
		handlers = append(handlers, handler)
	}
	h.mu.RUnlock()

	for _, handler := range handlers {
		handler(event)
	}
}

// translateNotification maps a runtime notification onto the Event union.
// Unknown methods and malformed payloads become EventOther so a runtime
// upgrade never breaks the stream loop.
func translateNotification(notification mcp.JSONRPCNotification) Event {
	fields := notification.Params.AdditionalFields

	switch notification.Method {
	case methodChatDelta:
		delta := TextDelta{
			MessageID: stringField(fields, "messageId"),
			Delta:     stringField(fields, "delta"),
		}
		return Event{Kind: EventTextDelta, Delta: &delta}

	case methodChatMessage:
		raw, ok := fields["message"].(map[string]interface{})
		if !ok {
			return Event{Kind: EventOther}
		}
		end := MessageEnd{Message: decodeAgentMessage(raw)}
		return Event{Kind: EventMessageEnd, End: &end}

	default:
		return Event{Kind: EventOther}
	}
}

func decodeAgentMessage(raw map[string]interface{}) AgentMessage {
	msg := AgentMessage{
		Role:         Role(stringField(raw, "role")),
		StopReason:   stringField(raw, "stopReason"),
		ErrorMessage: stringField(raw, "errorMessage"),
	}

	blocks, _ := raw["content"].([]interface{})
	for _, b := range blocks {
		block, ok := b.(map[string]interface{})
		if !ok {
			continue
		}
		msg.Content = append(msg.Content, ContentBlock{
			Type: stringField(block, "type"),
			Text: stringField(block, "text"),
		})
	}

	return msg
}

func stringField(fields map[string]interface{}, key string) string {
	if fields == nil {
		return ""
	}
	value, _ := fields[key].(string)
	return value
}
