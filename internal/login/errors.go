package login

import "errors"

// ErrLoginCancelled is the terminal outcome of an explicitly cancelled
// login. Cancellation is a normal outcome, not a failure: callers should
// not log it as an error.
var ErrLoginCancelled = errors.New("login cancelled")

// ErrNoPendingRequest is returned by Submit when no request for user
// input is outstanding.
var ErrNoPendingRequest = errors.New("no pending input request")

// ErrEmptyValue is returned by Submit when the pending request does not
// allow an empty value. The request stays outstanding.
var ErrEmptyValue = errors.New("a value is required")

// ErrLoginInProgress is returned when a login is started while another
// provider's login is still active on the same coordinator.
var ErrLoginInProgress = errors.New("another login is already in progress")

// Failure reasons carried by LoginFailedError.
const (
	// ReasonProvider covers rejection or a network failure during the
	// provider exchange.
	ReasonProvider = "provider exchange failed"

	// ReasonPersistFailed marks an authorization that succeeded but whose
	// credential could not be written to the store. The login is not
	// complete until persisted.
	ReasonPersistFailed = "credential persistence failed"

	// ReasonUnknownProvider marks a login attempt for a provider id with
	// no registered login routine.
	ReasonUnknownProvider = "unknown provider"
)

// LoginFailedError is the typed failure outcome of a login attempt.
type LoginFailedError struct {
	ProviderID string
	Reason     string
	Err        error
}

// Error implements the error interface.
func (e *LoginFailedError) Error() string {
	msg := "login failed for " + e.ProviderID + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *LoginFailedError) Unwrap() error {
	return e.Err
}
