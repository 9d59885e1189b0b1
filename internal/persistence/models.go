package persistence

import "time"

// SlotStatus enumerates the lifecycle states of an interview slot.
type SlotStatus string

const (
	SlotOpen   SlotStatus = "open"
	SlotHeld   SlotStatus = "held"
	SlotBooked SlotStatus = "booked"
)

// Slot represents one bookable interview time unit tied to a manager-candidate link.
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

// NotificationPriority enumerates delivery priorities.
type NotificationPriority string

const (
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
)

// Notification represents a message destined for one pass-code.
//
// Delivered tracks scheduler promotion and is distinct from Read, which only
// the recipient flips. Notifications are never deleted; they form the audit
// trail of everything pushed to a pass.
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
