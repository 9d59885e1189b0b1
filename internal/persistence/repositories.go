package persistence

import (
	"context"
	"time"
)

// SlotRepository exposes CRUD operations for interview slots.
type SlotRepository interface {
	CreateSlot(ctx context.Context, slot Slot) error
	UpdateSlot(ctx context.Context, slot Slot) error
	GetSlot(ctx context.Context, id string) (Slot, error)
	ListSlotsByLink(ctx context.Context, linkID string) ([]Slot, error)
	ListSlotsByManager(ctx context.Context, managerCode string) ([]Slot, error)
	ListSlotsByCandidate(ctx context.Context, candidateCode string) ([]Slot, error)
	DeleteSlot(ctx context.Context, id string) error
}

// NotificationRepository stores notifications. Records are append-and-update
// only; there is no delete, preserving the audit trail.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) error
	UpdateNotification(ctx context.Context, notification Notification) error
	GetNotification(ctx context.Context, id string) (Notification, error)
	ListNotificationsForCode(ctx context.Context, passCode string) ([]Notification, error)
	// ListPendingNotifications returns undelivered notifications whose
	// scheduled time is at or before the reference instant.
	ListPendingNotifications(ctx context.Context, reference time.Time) ([]Notification, error)
}

// SettingsRepository stores per-pass-code settings documents.
type SettingsRepository interface {
	UpsertSettings(ctx context.Context, settings PassSettings) error
	GetSettings(ctx context.Context, passCode string) (PassSettings, error)
}

// AdminActionRepository stores audit records of bulk operations.
type AdminActionRepository interface {
	CreateAdminAction(ctx context.Context, action AdminAction) error
	ListAdminActions(ctx context.Context) ([]AdminAction, error)
}
