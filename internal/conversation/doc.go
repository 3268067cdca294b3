// Package conversation turns an agent's asynchronous event stream into a
// coherent, append-only transcript.
//
// A Controller owns the exchange lifecycle: it appends the user message,
// opens exactly one stream subscription for the duration of the prompt
// call (subscribe happens-before prompt dispatch), accumulates text
// deltas in arrival order, and commits one assistant message when the
// runtime reports the message complete. Prompt failures surface as a
// synthetic assistant message in the transcript, never as an error to the
// caller.
package conversation
