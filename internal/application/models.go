package application

import "time"

// SlotStatus enumerates the lifecycle states of an interview slot.
type SlotStatus string

const (
	SlotOpen   SlotStatus = "open"
	SlotHeld   SlotStatus = "held"
	SlotBooked SlotStatus = "booked"
)

// validSlotStatus reports whether the value is a known slot status.
func validSlotStatus(status SlotStatus) bool {
	switch status {
	case SlotOpen, SlotHeld, SlotBooked:
		return true
	}
	return false
}

// Slot is one bookable interview time unit within a manager-candidate link.
type Slot struct {
	ID            string
	LinkID        string
	Label         string
	Date          string
	Time          string
	Status        SlotStatus
	ManagerCode   string
	CandidateCode *string
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SlotInput carries the attributes for creating a slot.
type SlotInput struct {
	LinkID      string
	Label       string
	Date        string
	Time        string
	Status      SlotStatus
	ManagerCode string
	Notes       *string
}

// SlotDelta carries a partial slot change. Nil fields are left untouched.
type SlotDelta struct {
	Label         *string
	Date          *string
	Time          *string
	Status        *SlotStatus
	CandidateCode *string
	Notes         *string
}

// NotificationPriority enumerates delivery priorities.
type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// Notification is a message destined for one pass-code.
type Notification struct {
	ID           string
	PassCode     string
	Type         string
	Title        string
	Body         string
	Priority     NotificationPriority
	Read         bool
	Delivered    bool
	ScheduledFor *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NotificationInput carries the attributes for creating a notification.
type NotificationInput struct {
	PassCode     string
	Type         string
	Title        string
	Body         string
	Priority     NotificationPriority
	ScheduledFor *time.Time
}

// PassSettings is the per-pass-code settings document.
type PassSettings struct {
	PassCode             string
	Theme                string
	Language             string
	Timezone             string
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// SettingsInput carries a full settings document for upsert.
type SettingsInput struct {
	Theme                string
	Language             string
	Timezone             string
	NotificationsEnabled bool
}

// SettingsPatch carries a partial settings change. Nil fields are left untouched.
type SettingsPatch struct {
	Theme                *string
	Language             *string
	Timezone             *string
	NotificationsEnabled *bool
}

// AdminAction is the immutable audit record of a bulk operation.
type AdminAction struct {
	ID          string
	ActionType  string
	TargetCodes []string
	PerformedBy string
	Result      map[string]any
	Status      string
	CreatedAt   time.Time
}

// TimelineMilestone is one entry of a candidate's hiring timeline, as supplied
// by the record store. Date is kept as the raw string the store holds; entries
// that do not parse are skipped by reminder derivation.
type TimelineMilestone struct {
	Title  string
	Date   string
	Status string
}

// Broadcaster fans a domain event out to the connections subscribed to its
// key. Implementations must not block on slow subscribers and must never
// surface delivery failures to the caller.
type Broadcaster interface {
	PublishSlot(linkID string, slot Slot)
	PublishSettings(passCode string, settings PassSettings)
	PublishNotification(passCode string, notification Notification)
	PublishAdminAction(action AdminAction, affectedCodes []string)
}
