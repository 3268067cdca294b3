// Package logging provides a thin subsystem-tagged logging layer on top of
// Go's standard log/slog package.
//
// All log entries carry a subsystem identifier (for example "Config",
// "CredStore", "Login") so output can be filtered by area. The package is
// initialized once at startup via Init; before that, calls fall through to
// the process-wide slog default.
//
// Usage:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Config", "loaded configuration from %s", path)
//	logging.Error("CredStore", err, "failed to persist credential")
//
// Secrets must never be passed to any logging call; callers log key names
// and provider identifiers only.
package logging
