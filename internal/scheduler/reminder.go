// Package scheduler runs the recurring reminder pass that promotes due
// pending notifications to delivered and pushes them to subscribers.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/talent-pass/internal/application"
	"github.com/example/talent-pass/internal/metrics"
)

// notificationSource is the slice of the notification service the scheduler
// depends on.
type notificationSource interface {
	ListPending(ctx context.Context, reference time.Time) ([]application.Notification, error)
	MarkDelivered(ctx context.Context, id string) (application.Notification, bool, error)
}

// publisher pushes a promoted notification to the pass-code's subscribers.
type publisher interface {
	PublishNotification(passCode string, notification application.Notification)
}

// ReminderScheduler scans for due notifications on a fixed interval. The scan
// is a full pass over pending notifications; the expected cardinality is one
// organization's hiring pipeline, so no time-ordered index is kept.
type ReminderScheduler struct {
	notifications notificationSource
	publisher     publisher
	logger        *slog.Logger
	interval      time.Duration
	initialDelay  time.Duration
	now           func() time.Time
}

// NewReminderScheduler wires a scheduler. Interval and initial delay come
// from configuration so tests can run with accelerated clocks.
func NewReminderScheduler(notifications notificationSource, publisher publisher, logger *slog.Logger, interval, initialDelay time.Duration, now func() time.Time) *ReminderScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &ReminderScheduler{
		notifications: notifications,
		publisher:     publisher,
		logger:        logger,
		interval:      interval,
		initialDelay:  initialDelay,
		now:           now,
	}
}

// Run blocks until the context is cancelled, ticking once per interval after
// the initial delay.
func (s *ReminderScheduler) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.initialDelay):
	}

	s.Tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scan pass: every due notification is flipped to delivered and
// pushed. A failure on one notification does not stop the rest; the
// notification stays pending and is retried on the next pass.
func (s *ReminderScheduler) Tick(ctx context.Context) {
	metrics.SchedulerTicks.Inc()

	reference := s.now()
	due, err := s.notifications.ListPending(ctx, reference)
	if err != nil {
		s.logger.Error("pending notification scan failed", slog.String("error", err.Error()))
		return
	}

	for _, notification := range due {
		promoted, wasPending, err := s.notifications.MarkDelivered(ctx, notification.ID)
		if err != nil {
			s.logger.Error("notification promotion failed",
				slog.String("notification_id", notification.ID),
				slog.String("error", err.Error()))
			continue
		}
		if !wasPending {
			continue
		}
		metrics.NotificationsPromoted.Inc()
		s.publisher.PublishNotification(promoted.PassCode, promoted)
		s.logger.Info("notification delivered",
			slog.String("notification_id", promoted.ID),
			slog.String("pass_code", promoted.PassCode),
			slog.String("type", promoted.Type))
	}
}
