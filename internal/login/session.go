package login

import (
	"context"
	"sync"
)

// State is the lifecycle state of one login attempt.
type State int

const (
	// StateNotStarted means the provider routine has not yet produced a
	// user-facing step.
	StateNotStarted State = iota

	// StateAwaitingAuthorization means an authorization URL has been
	// surfaced and the user is expected to complete it in a browser.
	StateAwaitingAuthorization

	// StateAwaitingPrompt means a PendingRequest is outstanding.
	StateAwaitingPrompt

	// StateCompleted is the successful terminal state.
	StateCompleted

	// StateCancelled is the terminal state after explicit cancellation.
	StateCancelled

	// StateFailed is the terminal state after provider rejection, network
	// failure, or post-authorization persistence failure.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateAwaitingAuthorization:
		return "awaiting_authorization"
	case StateAwaitingPrompt:
		return "awaiting_prompt"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Session is one provider's authorization attempt. It is created per
// login call, owns the single PendingRequest slot, and is never reused
// after reaching a terminal state.
type Session struct {
	mu sync.Mutex

	providerID   string
	state        State
	authURL      string
	instructions string
	statusText   string
	pending      *PendingRequest
	cancel       context.CancelFunc
}

func newSession(providerID string, cancel context.CancelFunc) *Session {
	return &Session{
		providerID: providerID,
		state:      StateNotStarted,
		cancel:     cancel,
	}
}

// ProviderID returns the provider this session authenticates.
func (s *Session) ProviderID() string {
	return s.providerID
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AuthorizationURL returns the surfaced authorization URL and its
// instructions, if the session has reached that step.
func (s *Session) AuthorizationURL() (url, instructions string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authURL, s.instructions
}

// StatusText returns the latest progress message.
func (s *Session) StatusText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusText
}

// Pending returns the outstanding PendingRequest, or nil.
func (s *Session) Pending() *PendingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// transition moves to a new state unless the session is already terminal.
// Terminal states are sticky: a cancellation recorded by Cancel must not
// be overwritten by the provider routine unwinding with an error.
func (s *Session) transition(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.state = next
}

func (s *Session) setAuthorization(url, instructions string) {
	s.mu.Lock()
	if !s.state.Terminal() {
		s.state = StateAwaitingAuthorization
		s.authURL = url
		s.instructions = instructions
	}
	s.mu.Unlock()
}

func (s *Session) setStatus(message string) {
	s.mu.Lock()
	s.statusText = message
	s.mu.Unlock()
}

// createPending installs a new PendingRequest in the session's single
// slot. A second outstanding request is a coordinator-level programming
// error: provider routines must not request input before the previous
// request resolves.
func (s *Session) createPending(spec PromptSpec) *PendingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		panic("login: provider requested input while a request is already outstanding")
	}

	req := newPendingRequest(spec)
	s.pending = req
	if !s.state.Terminal() {
		s.state = StateAwaitingPrompt
	}
	return req
}

// clearPending removes the outstanding request after it resolved.
func (s *Session) clearPending() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// takePending returns the outstanding request without clearing it; the
// suspended provider routine clears the slot when it resumes.
func (s *Session) takePending() *PendingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}
