// Package credstore resolves and persists per-provider credentials.
//
// A credential is a single secret (API key or OAuth access token) owned by
// a provider identifier. Resolution order is fixed:
//
//  1. Process environment: {UPPERCASE(providerID)}_API_KEY. A non-blank
//     value wins and is never persisted.
//  2. Persisted backend storage under the key "api_key_{providerID}",
//     namespaced by the roost service identifier.
//
// There is no in-memory caching layer: environment and backend are
// consulted fresh on every call, so external changes (another roost
// process completing a login, a manual file edit) are observed
// immediately. The Watcher type additionally surfaces such external
// changes as events for long-running sessions.
//
// SECURITY: The file backend creates credential files with 0600
// permissions inside a 0700 directory. Secret values are never logged.
package credstore
