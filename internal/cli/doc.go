// Package cli implements the interactive chat session: the readline
// REPL, terminal logger, and the terminal-driven login flow.
package cli
