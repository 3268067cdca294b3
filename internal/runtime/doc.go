// Package runtime defines the boundary to the agent runtime and provides
// an MCP-backed implementation of it.
//
// The Handle interface is the whole contract the conversation layer
// depends on: Subscribe delivers stream events (text deltas, message
// completion) and Prompt submits user text. MCPHandle implements Handle
// over an SSE MCP session: deltas and completed messages arrive as
// JSON-RPC notifications and a prompt is a blocking tool call.
//
// Anything else the runtime can do (tool execution, model selection) is
// deliberately outside this boundary.
package runtime
