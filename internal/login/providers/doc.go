// Package providers holds the concrete login routines, one per backend.
//
// Anthropic, OpenAI Codex, and the two Google registrations use the
// authorization-code flow with PKCE where the user pastes the code back;
// GitHub Copilot uses the device-authorization grant. Every routine
// drives itself through login.Callbacks and never touches the terminal
// directly.
package providers
