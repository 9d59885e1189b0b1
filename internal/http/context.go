package http

import (
	"context"
	"log/slog"

	"github.com/example/talent-pass/internal/logging"
)

type contextKey string

const (
	slotIDContextKey         contextKey = "slot_id"
	notificationIDContextKey contextKey = "notification_id"
	passCodeContextKey       contextKey = "pass_code"
)

// ContextWithSlotID injects the slot identifier resolved from the request
// path. The request logger, if present, picks up the identifier too.
func ContextWithSlotID(ctx context.Context, slotID string) context.Context {
	ctx = logging.With(ctx, "slot_id", slotID)
	return context.WithValue(ctx, slotIDContextKey, slotID)
}

// SlotIDFromContext extracts a slot identifier previously associated with the context.
func SlotIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(slotIDContextKey).(string)
	return id, ok
}

// ContextWithNotificationID injects the notification identifier resolved from the request path.
func ContextWithNotificationID(ctx context.Context, notificationID string) context.Context {
	ctx = logging.With(ctx, "notification_id", notificationID)
	return context.WithValue(ctx, notificationIDContextKey, notificationID)
}

// NotificationIDFromContext extracts a notification identifier previously associated with the context.
func NotificationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(notificationIDContextKey).(string)
	return id, ok
}

// ContextWithPassCode injects the pass-code resolved from the request path.
func ContextWithPassCode(ctx context.Context, passCode string) context.Context {
	ctx = logging.With(ctx, "pass_code", passCode)
	return context.WithValue(ctx, passCodeContextKey, passCode)
}

// PassCodeFromContext extracts a pass-code previously associated with the context.
func PassCodeFromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(passCodeContextKey).(string)
	return code, ok
}

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request logger from the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
