package credstore

import "errors"

// ErrInvalidSecret is returned by Set when the secret is empty after
// trimming whitespace.
var ErrInvalidSecret = errors.New("credential secret is blank")

// ErrNotFound is returned by backends when no value exists for a key.
// Store.Get translates it into an absent credential; it never escapes the
// Store API.
var ErrNotFound = errors.New("credential not found")

// StoreError wraps a failure of the underlying storage backend.
type StoreError struct {
	// Op is the store operation that failed ("set", "delete").
	Op string

	// Key is the storage key involved. Never contains secret material.
	Key string

	// Err is the underlying backend error.
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return "credential store " + e.Op + " failed for " + e.Key + ": " + e.Err.Error()
}

// Unwrap returns the underlying backend error.
func (e *StoreError) Unwrap() error {
	return e.Err
}
