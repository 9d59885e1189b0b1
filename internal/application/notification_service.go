package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/talent-pass/internal/persistence"
)

// MilestoneReminderLead is how far ahead of a milestone its reminder is
// scheduled.
const MilestoneReminderLead = 30 * time.Minute

// NotificationRepository captures the persistence interactions needed by the
// notification service.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification Notification) (Notification, error)
	GetNotification(ctx context.Context, id string) (Notification, error)
	UpdateNotification(ctx context.Context, notification Notification) (Notification, error)
	ListNotificationsForCode(ctx context.Context, passCode string) ([]Notification, error)
	ListPendingNotifications(ctx context.Context, reference time.Time) ([]Notification, error)
}

// NotificationService owns notification state transitions. Notifications that
// are due at creation time are delivered (and broadcast) immediately; future
// ones wait for the reminder scheduler to promote them.
type NotificationService struct {
	notifications NotificationRepository
	broadcaster   Broadcaster
	idGenerator   func() string
	now           func() time.Time
}

// NewNotificationService wires dependencies for notification operations.
func NewNotificationService(notifications NotificationRepository, broadcaster Broadcaster, idGenerator func() string, now func() time.Time) *NotificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationService{
		notifications: notifications,
		broadcaster:   broadcaster,
		idGenerator:   idGenerator,
		now:           now,
	}
}

// Create validates and persists a notification. When the scheduled time is
// absent or already past, the notification is marked delivered at creation
// and broadcast to the pass-code's subscribers before Create returns.
func (s *NotificationService) Create(ctx context.Context, input NotificationInput) (Notification, error) {
	if s == nil || s.notifications == nil {
		return Notification{}, fmt.Errorf("NotificationService is not configured")
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.PassCode) == "" {
		vErr.add("pass_code", "pass code is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	if priority != PriorityNormal && priority != PriorityHigh {
		vErr.add("priority", "priority must be normal or high")
	}

	if vErr.HasErrors() {
		return Notification{}, vErr
	}

	notificationType := strings.TrimSpace(input.Type)
	if notificationType == "" {
		notificationType = "broadcast"
	}

	createdAt := s.now()
	dueNow := input.ScheduledFor == nil || !input.ScheduledFor.After(createdAt)

	notification := Notification{
		ID:           s.idGenerator(),
		PassCode:     strings.TrimSpace(input.PassCode),
		Type:         notificationType,
		Title:        strings.TrimSpace(input.Title),
		Body:         input.Body,
		Priority:     priority,
		Delivered:    dueNow,
		ScheduledFor: input.ScheduledFor,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	persisted, err := s.notifications.CreateNotification(ctx, notification)
	if err != nil {
		return Notification{}, mapNotificationRepoError(err)
	}

	if dueNow && s.broadcaster != nil {
		s.broadcaster.PublishNotification(persisted.PassCode, persisted)
	}
	return persisted, nil
}

// MarkDelivered flips the delivered flag. The flip happens at most once: the
// second return value reports whether this call performed the promotion, so
// callers broadcast only on a genuine transition.
func (s *NotificationService) MarkDelivered(ctx context.Context, id string) (Notification, bool, error) {
	if s == nil || s.notifications == nil {
		return Notification{}, false, fmt.Errorf("NotificationService is not configured")
	}

	existing, err := s.notifications.GetNotification(ctx, id)
	if err != nil {
		return Notification{}, false, mapNotificationRepoError(err)
	}
	if existing.Delivered {
		return existing, false, nil
	}

	existing.Delivered = true
	existing.UpdatedAt = s.now()
	persisted, err := s.notifications.UpdateNotification(ctx, existing)
	if err != nil {
		return Notification{}, false, mapNotificationRepoError(err)
	}
	return persisted, true, nil
}

// MarkRead flips the read flag. A notification can only be read after it has
// been delivered.
func (s *NotificationService) MarkRead(ctx context.Context, id string) (Notification, error) {
	if s == nil || s.notifications == nil {
		return Notification{}, fmt.Errorf("NotificationService is not configured")
	}

	existing, err := s.notifications.GetNotification(ctx, id)
	if err != nil {
		return Notification{}, mapNotificationRepoError(err)
	}
	if !existing.Delivered {
		return Notification{}, ErrInvalidState
	}
	if existing.Read {
		return existing, nil
	}

	existing.Read = true
	existing.UpdatedAt = s.now()
	persisted, err := s.notifications.UpdateNotification(ctx, existing)
	if err != nil {
		return Notification{}, mapNotificationRepoError(err)
	}
	return persisted, nil
}

// ListForCode returns all notifications addressed to a pass-code.
func (s *NotificationService) ListForCode(ctx context.Context, passCode string) ([]Notification, error) {
	if s == nil || s.notifications == nil {
		return nil, fmt.Errorf("NotificationService is not configured")
	}
	return s.notifications.ListNotificationsForCode(ctx, passCode)
}

// ListUnread returns delivered-but-unread notifications for a pass-code.
func (s *NotificationService) ListUnread(ctx context.Context, passCode string) ([]Notification, error) {
	all, err := s.ListForCode(ctx, passCode)
	if err != nil {
		return nil, err
	}
	unread := make([]Notification, 0, len(all))
	for _, notification := range all {
		if notification.Delivered && !notification.Read {
			unread = append(unread, notification)
		}
	}
	if len(unread) == 0 {
		return nil, nil
	}
	return unread, nil
}

// ListPending returns undelivered notifications due at the reference instant.
func (s *NotificationService) ListPending(ctx context.Context, reference time.Time) ([]Notification, error) {
	if s == nil || s.notifications == nil {
		return nil, fmt.Errorf("NotificationService is not configured")
	}
	return s.notifications.ListPendingNotifications(ctx, reference)
}

// GenerateMilestoneReminders derives reminder notifications for a candidate's
// upcoming milestones and creates each one. Reminders already in the past at
// derivation time arrive through Create's immediate-delivery path.
func (s *NotificationService) GenerateMilestoneReminders(ctx context.Context, passCode string, milestones []TimelineMilestone) ([]Notification, error) {
	if s == nil || s.notifications == nil {
		return nil, fmt.Errorf("NotificationService is not configured")
	}

	inputs := DeriveMilestoneReminders(passCode, milestones, s.now())
	created := make([]Notification, 0, len(inputs))
	for _, input := range inputs {
		notification, err := s.Create(ctx, input)
		if err != nil {
			return created, err
		}
		created = append(created, notification)
	}
	if len(created) == 0 {
		return nil, nil
	}
	return created, nil
}

// DeriveMilestoneReminders computes the reminder set for a timeline. For every
// milestone with status "upcoming" whose date parses to a valid instant, it
// yields one reminder scheduled MilestoneReminderLead before the milestone;
// milestones whose instant has already passed yield nothing. Every trigger
// site goes through this function.
func DeriveMilestoneReminders(passCode string, milestones []TimelineMilestone, now time.Time) []NotificationInput {
	var inputs []NotificationInput
	for _, milestone := range milestones {
		if milestone.Status != "upcoming" {
			continue
		}
		instant, ok := parseMilestoneDate(milestone.Date)
		if !ok {
			continue
		}
		if !instant.After(now) {
			continue
		}

		scheduledFor := instant.Add(-MilestoneReminderLead)
		inputs = append(inputs, NotificationInput{
			PassCode:     passCode,
			Type:         "milestone_reminder",
			Title:        "Upcoming: " + milestone.Title,
			Body:         fmt.Sprintf("%s is scheduled for %s.", milestone.Title, instant.Format(time.RFC1123)),
			Priority:     PriorityNormal,
			ScheduledFor: &scheduledFor,
		})
	}
	return inputs
}

func parseMilestoneDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func mapNotificationRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
