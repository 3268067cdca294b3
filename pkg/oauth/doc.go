// Package oauth provides shared OAuth 2.1 primitives used by the provider
// login flows: PKCE challenge generation and random state parameters.
//
// PKCE (Proof Key for Code Exchange, RFC 7636) is mandatory for public
// clients. Every authorization-code flow in this codebase generates a fresh
// verifier/challenge pair with GeneratePKCE and a CSRF-protection state
// value with GenerateState.
package oauth
