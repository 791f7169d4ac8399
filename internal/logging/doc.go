// Copyright 2026 The Witchframe Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/witchframe

// Package logging is witchframe's zerolog-based structured logging layer:
// a global logger configurable via Init, context-propagated correlation
// and request IDs, an slog adapter for the suture supervision tree, and
// a security-event logger for the management port's gated endpoints.
//
// # Quick Start
//
//	import "github.com/tomtom215/witchframe/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("user", "alice").Msg("Login successful")
//	logging.Error().Err(err).Int("code", 500).Msg("Request failed")
//
//	// Context-aware logging
//	logging.Ctx(ctx).Info().Str("request_id", reqID).Msg("Processing")
//
// # Configuration
//
// The package reads no LOG_* environment variables. The only variable it
// consults is FUZZ_MODE: when it is "1", the default logger set up at
// package initialization (before any Init call) logs at fatal level only.
//
// Programmatic Configuration:
//
//	logging.Init(logging.Config{
//	    Level:     "debug",    // trace, debug, info, warn, error, fatal
//	    Format:    "console",  // json or console
//	    Caller:    true,       // Include caller info
//	    Timestamp: true,       // Include timestamps
//	    Output:    os.Stderr,  // Output writer
//	})
//
// Most callers never touch this package directly: internal/server.New
// calls Init with the runtime config's logging.level and a json or console
// format chosen by the install config's console-log flag, and
// internal/pipeline's RequestLog/ErrorLog layers route per-request
// and per-service envelopes through internal/envelope instead of through
// this package's global logger.
//
// # Structured Logging
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().Str("user", username).Int("count", itemCount).Msg("processed")  // Correct
//	logging.Info().Msgf("processed %d items for %s", itemCount, username)          // Avoid
//
// # Context-Aware Logging
//
// ContextWithCorrelationID/ContextWithRequestID attach IDs to a
// context.Context; Ctx(ctx) returns a logger with whichever of those are
// present already attached as fields. internal/config.Reloader uses this
// to tag every detect/parse/publish/log sequence of a single runtime
// config reload with one correlation ID, the same way an HTTP request's
// pipeline layers share a request ID:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.CtxInfo(ctx).Msg("runtime config reloaded")
//
// # slog Adapter
//
// NewSlogLogger returns an *slog.Logger backed by the global zerolog
// logger, for libraries that only accept slog — in this module, the
// suture.Supervisor tree built in internal/supervisor.
//
// # Security Event Logging
//
// SecurityLogger records grants and denials against the management
// port's bearer-secret-gated endpoints (see internal/management's
// gated helper), with sanitization helpers (SanitizeToken,
// SanitizeUserID, SanitizeEmail, ...) so captured detail fields never
// leak a raw secret into a log line.
//
// # See Also
//
//   - github.com/rs/zerolog: underlying logging library
//   - internal/envelope: the request/service log envelope pipeline this
//     package's global logger is independent from
package logging
