package login

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"roost/internal/credstore"
)

// Coordinator runs provider login routines and mediates between them and
// the human-facing caller. At most one login is active per coordinator;
// concurrent Login calls for the same provider join the in-flight
// attempt, calls for a different provider fail with ErrLoginInProgress.
type Coordinator struct {
	store     *credstore.Store
	providers map[string]Provider
	openURL   func(string) error

	group singleflight.Group

	mu      sync.Mutex
	session *Session
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithBrowserOpener replaces the function used to open authorization
// URLs. Tests use this to observe or suppress browser launches.
func WithBrowserOpener(open func(string) error) CoordinatorOption {
	return func(c *Coordinator) {
		c.openURL = open
	}
}

// NewCoordinator creates a Coordinator over the given credential store
// and provider set.
func NewCoordinator(store *credstore.Store, providers []Provider, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:     store,
		providers: make(map[string]Provider, len(providers)),
		openURL:   OpenBrowser,
	}
	for _, p := range providers {
		c.providers[p.ID()] = p
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Providers returns the registered provider identifiers in no particular
// order.
func (c *Coordinator) Providers() []string {
	ids := make([]string, 0, len(c.providers))
	for id := range c.providers {
		ids = append(ids, id)
	}
	return ids
}

// Session returns the most recent login session, or nil if no login has
// been started.
func (c *Coordinator) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Pending returns the outstanding input request of the active session,
// or nil.
func (c *Coordinator) Pending() *PendingRequest {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Pending()
}

// Login runs the full authorization exchange for a provider and blocks
// until it reaches a terminal state, returning the credential on
// success. The credential has already been persisted to the store by
// then; nothing is persisted on any failure path.
//
// Concurrent calls for the same provider share a single exchange and all
// receive its outcome.
func (c *Coordinator) Login(ctx context.Context, providerID string) (*credstore.Credential, error) {
	p, ok := c.providers[providerID]
	if !ok {
		return nil, &LoginFailedError{ProviderID: providerID, Reason: ReasonUnknownProvider}
	}

	v, err, shared := c.group.Do(providerID, func() (interface{}, error) {
		return c.run(ctx, p)
	})
	if shared {
		slog.Debug("Joined in-flight login attempt", "provider", providerID)
	}
	if err != nil {
		return nil, err
	}
	cred, _ := v.(*credstore.Credential)
	return cred, nil
}

// Submit delivers the user's value to the outstanding input request. The
// value is trimmed before validation and delivery; an empty result is
// rejected with ErrEmptyValue unless the request allows it, and the
// request stays outstanding so the user can retry.
func (c *Coordinator) Submit(value string) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return ErrNoPendingRequest
	}

	req := sess.takePending()
	if req == nil {
		return ErrNoPendingRequest
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" && !req.Spec.AllowEmpty {
		return ErrEmptyValue
	}

	req.Resolve(trimmed)
	return nil
}

// Cancel aborts the active login, if any. The outstanding input request
// (if present) is rejected and the provider routine's context is
// cancelled; the routine unwinds at its next suspension point. Cancel is
// idempotent and a no-op once the session is terminal.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil || sess.State().Terminal() {
		return
	}

	slog.Debug("Cancelling login", "provider", sess.ProviderID())

	// Record the terminal state before waking the routine so it cannot
	// overwrite cancellation with a failure of its own.
	sess.transition(StateCancelled)
	if req := sess.takePending(); req != nil {
		req.Reject(ErrLoginCancelled)
	}
	sess.cancel()
}

func (c *Coordinator) run(ctx context.Context, p Provider) (*credstore.Credential, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := newSession(p.ID(), cancel)

	c.mu.Lock()
	if cur := c.session; cur != nil && !cur.State().Terminal() {
		c.mu.Unlock()
		return nil, ErrLoginInProgress
	}
	c.session = sess
	c.mu.Unlock()

	slog.Debug("Starting login", "provider", p.ID())

	cb := Callbacks{
		AuthorizationReady: func(url, instructions string) {
			sess.setAuthorization(url, instructions)
			if c.openURL != nil {
				if err := c.openURL(url); err != nil {
					slog.Debug("Failed to open browser for authorization URL",
						"provider", p.ID(),
						"error", err)
				}
			}
		},
		PromptNeeded: func(ctx context.Context, spec PromptSpec) (string, error) {
			req := sess.createPending(spec)
			defer sess.clearPending()
			select {
			case res := <-req.result:
				return res.value, res.err
			case <-ctx.Done():
				req.Reject(ctx.Err())
				return "", ctx.Err()
			}
		},
		Progress: sess.setStatus,
	}

	cred, err := p.Login(ctx, cb)
	if err != nil {
		if errors.Is(err, ErrLoginCancelled) || errors.Is(err, context.Canceled) {
			sess.transition(StateCancelled)
			slog.Debug("Login cancelled", "provider", p.ID())
			return nil, ErrLoginCancelled
		}
		sess.transition(StateFailed)
		slog.Debug("Login failed", "provider", p.ID(), "error", err)
		return nil, &LoginFailedError{ProviderID: p.ID(), Reason: ReasonProvider, Err: err}
	}

	if err := c.store.Set(p.ID(), cred.Secret); err != nil {
		sess.transition(StateFailed)
		slog.Debug("Login succeeded but credential could not be persisted",
			"provider", p.ID(),
			"error", err)
		return nil, &LoginFailedError{ProviderID: p.ID(), Reason: ReasonPersistFailed, Err: err}
	}

	sess.transition(StateCompleted)
	slog.Debug("Login completed", "provider", p.ID())
	return cred, nil
}
