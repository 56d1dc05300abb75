// Package ctxlog carries a *slog.Logger through a context.Context so that
// every phase of a setup run logs through the same configured instance.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type so no other package can collide with our entry.
type key struct{}

var loggerKey = key{}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from a context. A context that never went
// through WithLogger yields the process-wide default logger, which keeps
// library code usable from plain tests.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
