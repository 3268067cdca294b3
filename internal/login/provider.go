package login

import (
	"context"

	"roost/internal/credstore"
)

// Callbacks are the hooks the coordinator supplies to a provider login
// routine. The routine drives the exchange; the coordinator owns all
// user interaction.
type Callbacks struct {
	// AuthorizationReady surfaces an authorization URL the user must
	// visit. The coordinator also attempts to open it in the platform
	// browser; that is best-effort and its failure is ignored.
	AuthorizationReady func(url, instructions string)

	// PromptNeeded suspends the routine until the user supplies a value
	// (or the login is cancelled). Exactly one request may be outstanding
	// at a time.
	PromptNeeded func(ctx context.Context, spec PromptSpec) (string, error)

	// Progress reports a status-text update. No state transition.
	Progress func(message string)
}

// Provider is one backend's login routine. Implementations initiate the
// authorization step, collect whatever input the exchange needs through
// the callbacks, and return the resulting credential.
//
// Routines must honor ctx between steps: cancellation is cooperative and
// only takes effect at the next suspension point or ctx check.
type Provider interface {
	// ID returns the provider identifier, e.g. "anthropic".
	ID() string

	// Login runs the provider-specific authorization exchange.
	Login(ctx context.Context, cb Callbacks) (*credstore.Credential, error)
}
