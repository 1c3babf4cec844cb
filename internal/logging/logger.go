// Package logging defines the structured-logging interface shared by the
// device transport, the persistence layer and the CLI. The only production
// implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "upload finished", "file", name, "code", code)
type Logger interface {
	// Debug logs verbose diagnostics (request bodies are never logged).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a recoverable failure, e.g. a file left queued after a failed upload.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure the caller could not recover from.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
