// Package login implements interactive provider authorization.
//
// A Coordinator owns one login attempt at a time. The provider-specific
// exchange runs as a blocking routine (Provider.Login) that surfaces
// authorization URLs, reports progress, and suspends on a PendingRequest
// whenever it needs human input. The caller observes the Session state,
// answers requests via Submit, and can abort at any point via Cancel.
//
// Concrete provider routines live in the providers subpackage.
package login
