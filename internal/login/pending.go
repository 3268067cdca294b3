package login

import (
	"strings"
	"sync"
)

// PromptSpec describes one request for human input made by a provider
// login routine.
type PromptSpec struct {
	// Message is the prompt shown to the user.
	Message string

	// Placeholder is an optional input hint.
	Placeholder string

	// AllowEmpty permits submitting an empty value (e.g. "press enter to
	// accept the default").
	AllowEmpty bool
}

type promptResult struct {
	value string
	err   error
}

// PendingRequest is the single rendezvous point between a suspended
// provider routine and the human-facing caller. The provider routine
// waits on the result channel; the caller resolves or rejects it exactly
// once via the coordinator's Submit/Cancel.
type PendingRequest struct {
	Spec PromptSpec

	// CodeEntry marks the request as code-style input. Presentation only;
	// it never changes control flow.
	CodeEntry bool

	once   sync.Once
	result chan promptResult
}

func newPendingRequest(spec PromptSpec) *PendingRequest {
	return &PendingRequest{
		Spec:      spec,
		CodeEntry: looksLikeCodePrompt(spec.Message),
		result:    make(chan promptResult, 1),
	}
}

// Resolve completes the request with the user's value. Later calls to
// Resolve or Reject are no-ops.
func (r *PendingRequest) Resolve(value string) {
	r.once.Do(func() {
		r.result <- promptResult{value: value}
	})
}

// Reject completes the request with an error, typically cancellation.
func (r *PendingRequest) Reject(err error) {
	r.once.Do(func() {
		r.result <- promptResult{err: err}
	})
}

// looksLikeCodePrompt applies the presentation heuristic for code-style
// input: prompts mentioning an authorization code or pasting.
func looksLikeCodePrompt(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "authorization code") || strings.Contains(lower, "paste")
}
