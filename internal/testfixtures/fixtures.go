// Package testfixtures provides deterministic clocks, identifier generators
// and entity builders shared by the test suites.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/talent-pass/internal/application"
)

var (
	slotCounter         uint64
	notificationCounter uint64
)

var referenceTime = time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// SlotOption configures the generated slot fixture.
type SlotOption func(*application.Slot)

// NewSlotFixture returns a deterministic open slot with optional overrides.
func NewSlotFixture(opts ...SlotOption) application.Slot {
	idx := atomic.AddUint64(&slotCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	slot := application.Slot{
		ID:          fmt.Sprintf("slot-%03d", idx),
		LinkID:      "link-001",
		Label:       fmt.Sprintf("Interview %03d", idx),
		Date:        "2026-09-02",
		Time:        "10:00",
		Status:      application.SlotOpen,
		ManagerCode: "MGR-001",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&slot)
	}
	return slot
}

// WithSlotLink overrides the generated link identifier.
func WithSlotLink(linkID string) SlotOption {
	return func(s *application.Slot) {
		s.LinkID = linkID
	}
}

// WithSlotStatus overrides the generated status. Booked slots should also set
// a candidate via WithSlotCandidate.
func WithSlotStatus(status application.SlotStatus) SlotOption {
	return func(s *application.Slot) {
		s.Status = status
	}
}

// WithSlotCandidate sets the occupying candidate.
func WithSlotCandidate(passCode string) SlotOption {
	return func(s *application.Slot) {
		s.CandidateCode = &passCode
	}
}

// NotificationOption configures the generated notification fixture.
type NotificationOption func(*application.Notification)

// NewNotificationFixture returns a deterministic delivered notification with
// optional overrides.
func NewNotificationFixture(opts ...NotificationOption) application.Notification {
	idx := atomic.AddUint64(&notificationCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	notification := application.Notification{
		ID:        fmt.Sprintf("notification-%03d", idx),
		PassCode:  "PASS-001",
		Type:      "reminder",
		Title:     fmt.Sprintf("Reminder %03d", idx),
		Body:      "You have an upcoming event.",
		Priority:  application.PriorityNormal,
		Delivered: true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&notification)
	}
	return notification
}

// WithNotificationPassCode overrides the destination pass-code.
func WithNotificationPassCode(passCode string) NotificationOption {
	return func(n *application.Notification) {
		n.PassCode = passCode
	}
}

// WithNotificationSchedule marks the notification pending for the given time.
func WithNotificationSchedule(at time.Time) NotificationOption {
	return func(n *application.Notification) {
		n.ScheduledFor = &at
		n.Delivered = false
	}
}
