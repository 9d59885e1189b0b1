// Package logging carries request-scoped slog loggers through contexts.
package logging

import (
	"context"
	"log/slog"
)

type loggerKey struct{}

// ContextWithLogger returns a derived context that carries the provided
// logger. A nil logger leaves the context untouched.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext extracts a logger previously attached to the context, or nil
// when none is attached.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}

// With derives a context whose logger carries the extra attributes. Contexts
// without a logger pass through unchanged.
func With(ctx context.Context, args ...any) context.Context {
	logger := FromContext(ctx)
	if logger == nil {
		return ctx
	}
	return ContextWithLogger(ctx, logger.With(args...))
}
