package credstore

import (
	"errors"
	"os"
	"strings"

	"roost/pkg/logging"
)

// keyPrefix namespaces credential entries inside the backend so the same
// storage can hold other roost state later without key collisions.
const keyPrefix = "api_key_"

// envKeySuffix is appended to the upper-cased provider id to form the
// environment override variable name.
const envKeySuffix = "_API_KEY"

// Credential is a secret bound to a provider identifier. At most one live
// credential exists per provider in the store.
type Credential struct {
	ProviderID string
	Secret     string
}

// Store resolves and persists provider credentials. Environment overrides
// always win over persisted entries and are never written back.
type Store struct {
	backend Backend
	env     func(string) string
}

// Option configures a Store.
type Option func(*Store)

// WithEnvLookup replaces the environment lookup function. Tests use this
// to inject overrides without mutating the process environment.
func WithEnvLookup(lookup func(string) string) Option {
	return func(s *Store) {
		s.env = lookup
	}
}

// New creates a Store over the given backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		env:     os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnvKey returns the environment variable name consulted for a provider,
// e.g. "anthropic" -> "ANTHROPIC_API_KEY".
func EnvKey(providerID string) string {
	return strings.ToUpper(providerID) + envKeySuffix
}

// StorageKey returns the backend key for a provider's persisted credential.
func StorageKey(providerID string) string {
	return keyPrefix + providerID
}

// Get resolves the credential for a provider. The environment override is
// checked first; a non-blank value short-circuits persisted storage.
// Returns nil when neither source has a value.
func (s *Store) Get(providerID string) *Credential {
	if v := strings.TrimSpace(s.env(EnvKey(providerID))); v != "" {
		return &Credential{ProviderID: providerID, Secret: v}
	}

	raw, err := s.backend.Get(StorageKey(providerID))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logging.Warn("CredStore", "failed to read credential for %s: %v", providerID, err)
		}
		return nil
	}

	return &Credential{ProviderID: providerID, Secret: string(raw)}
}

// Has reports whether a credential resolves for the provider from either
// source.
func (s *Store) Has(providerID string) bool {
	return s.Get(providerID) != nil
}

// Source identifies where a credential was resolved from.
type Source string

const (
	SourceNone        Source = "none"
	SourceEnvironment Source = "environment"
	SourceStored      Source = "stored"
)

// Resolve reports the credential and which source provided it. It exists
// for status displays; control flow should use Get/Has.
func (s *Store) Resolve(providerID string) (*Credential, Source) {
	if v := strings.TrimSpace(s.env(EnvKey(providerID))); v != "" {
		return &Credential{ProviderID: providerID, Secret: v}, SourceEnvironment
	}

	raw, err := s.backend.Get(StorageKey(providerID))
	if err != nil {
		return nil, SourceNone
	}
	return &Credential{ProviderID: providerID, Secret: string(raw)}, SourceStored
}

// Set persists a credential for a provider, trimming surrounding
// whitespace first. The existing entry is deleted before the new one is
// written so a partial failure never leaves two conflicting entries.
func (s *Store) Set(providerID, secret string) error {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ErrInvalidSecret
	}

	key := StorageKey(providerID)
	if err := s.backend.Delete(key); err != nil {
		return &StoreError{Op: "set", Key: key, Err: err}
	}
	if err := s.backend.Put(key, []byte(secret)); err != nil {
		return &StoreError{Op: "set", Key: key, Err: err}
	}

	logging.Debug("CredStore", "stored credential for provider %s", providerID)
	return nil
}

// Delete removes the persisted credential for a provider. Deleting an
// absent entry is a success.
func (s *Store) Delete(providerID string) error {
	key := StorageKey(providerID)
	if err := s.backend.Delete(key); err != nil {
		return &StoreError{Op: "delete", Key: key, Err: err}
	}

	logging.Debug("CredStore", "deleted credential for provider %s", providerID)
	return nil
}
