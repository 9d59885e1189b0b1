package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/talent-pass/internal/persistence"
)

// NotificationRepository implements persistence.NotificationRepository using SQLite.
type NotificationRepository struct {
	db *DB
}

// NewNotificationRepository creates a SQLite notification repository.
func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification inserts a new notification.
func (r *NotificationRepository) CreateNotification(ctx context.Context, notification persistence.Notification) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		seq, err := r.db.nextSeq(ctx, tx)
		if err != nil {
			return fmt.Errorf("sqlite: notification sequence: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO notifications (id, pass_code, type, title, body, priority, read, delivered, scheduled_for, seq, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			notification.ID,
			notification.PassCode,
			notification.Type,
			notification.Title,
			notification.Body,
			string(notification.Priority),
			boolToInt(notification.Read),
			boolToInt(notification.Delivered),
			nullTime(notification.ScheduledFor),
			seq,
			formatTime(notification.CreatedAt),
			formatTime(notification.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return persistence.ErrDuplicate
			}
			return fmt.Errorf("sqlite: insert notification: %w", err)
		}
		return nil
	})
}

// UpdateNotification replaces the mutable columns of an existing notification.
func (r *NotificationRepository) UpdateNotification(ctx context.Context, notification persistence.Notification) error {
	result, err := r.db.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = ?, delivered = ?, scheduled_for = ?, updated_at = ?
		WHERE id = ?`,
		boolToInt(notification.Read),
		boolToInt(notification.Delivered),
		nullTime(notification.ScheduledFor),
		formatTime(notification.UpdatedAt),
		notification.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update notification: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetNotification retrieves a notification by ID.
func (r *NotificationRepository) GetNotification(ctx context.Context, id string) (persistence.Notification, error) {
	row := r.db.db.QueryRowContext(ctx, `
		SELECT id, pass_code, type, title, body, priority, read, delivered, scheduled_for, created_at, updated_at
		FROM notifications WHERE id = ?`, id)

	notification, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Notification{}, persistence.ErrNotFound
		}
		return persistence.Notification{}, fmt.Errorf("sqlite: get notification: %w", err)
	}
	return notification, nil
}

// ListNotificationsForCode returns all notifications for a pass-code in insertion order.
func (r *NotificationRepository) ListNotificationsForCode(ctx context.Context, passCode string) ([]persistence.Notification, error) {
	return r.listNotifications(ctx, `
		SELECT id, pass_code, type, title, body, priority, read, delivered, scheduled_for, created_at, updated_at
		FROM notifications WHERE pass_code = ? ORDER BY seq ASC`, passCode)
}

// ListPendingNotifications returns undelivered notifications due at the reference instant.
func (r *NotificationRepository) ListPendingNotifications(ctx context.Context, reference time.Time) ([]persistence.Notification, error) {
	return r.listNotifications(ctx, `
		SELECT id, pass_code, type, title, body, priority, read, delivered, scheduled_for, created_at, updated_at
		FROM notifications
		WHERE delivered = 0 AND (scheduled_for IS NULL OR scheduled_for <= ?)
		ORDER BY seq ASC`, formatTime(reference))
}

func (r *NotificationRepository) listNotifications(ctx context.Context, query string, args ...any) ([]persistence.Notification, error) {
	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []persistence.Notification
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list notifications: %w", err)
	}
	return notifications, nil
}

func scanNotification(row rowScanner) (persistence.Notification, error) {
	var (
		notification         persistence.Notification
		priority             string
		read, delivered      int
		scheduledFor         sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&notification.ID,
		&notification.PassCode,
		&notification.Type,
		&notification.Title,
		&notification.Body,
		&priority,
		&read,
		&delivered,
		&scheduledFor,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Notification{}, err
	}

	notification.Priority = persistence.NotificationPriority(priority)
	notification.Read = read != 0
	notification.Delivered = delivered != 0
	notification.ScheduledFor = timePtr(scheduledFor)
	notification.CreatedAt = parseTime(createdAt)
	notification.UpdatedAt = parseTime(updatedAt)
	return notification, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
