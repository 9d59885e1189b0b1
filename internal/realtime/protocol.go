// Package realtime implements the persistent-connection fan-out layer: the
// connection registry, the broadcast router, and the websocket endpoint that
// speaks the JSON control protocol.
package realtime

import (
	"time"

	"github.com/example/talent-pass/internal/application"
)

// Outbound message types.
const (
	MessageConnected      = "connected"
	MessagePong           = "pong"
	MessageSlotUpdate     = "slot_update"
	MessageSettingsUpdate = "settings_update"
	MessageNotification   = "notification"
	MessageAdminAction    = "admin_action"
)

// Inbound control message types.
const (
	controlSubscribe        = "subscribe"
	controlSubscribeSlots   = "subscribe_slots"
	controlUnsubscribe      = "unsubscribe"
	controlUnsubscribeSlots = "unsubscribe_slots"
	controlPing             = "ping"
)

// inboundMessage is the permissive envelope for client control messages.
// Fields irrelevant to a given type are left empty by the sender.
type inboundMessage struct {
	Type     string `json:"type"`
	PassCode string `json:"passCode,omitempty"`
	LinkID   string `json:"linkId,omitempty"`
}

// outboundMessage is the envelope for every server push. Timestamp is
// milliseconds since the Unix epoch.
type outboundMessage struct {
	Type      string `json:"type"`
	LinkID    string `json:"linkId,omitempty"`
	PassCode  string `json:"passCode,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type timestampPayload struct {
	Timestamp int64 `json:"timestamp"`
}

type slotPayload struct {
	ID            string  `json:"id"`
	LinkID        string  `json:"linkId"`
	Label         string  `json:"label"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Status        string  `json:"status"`
	ManagerCode   string  `json:"managerCode"`
	CandidateCode *string `json:"candidateCode,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	UpdatedAt     string  `json:"updatedAt"`
}

type settingsPayload struct {
	PassCode             string `json:"passCode"`
	Theme                string `json:"theme"`
	Language             string `json:"language"`
	Timezone             string `json:"timezone"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	UpdatedAt            string `json:"updatedAt"`
}

type notificationPayload struct {
	ID           string  `json:"id"`
	PassCode     string  `json:"passCode"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	Priority     string  `json:"priority"`
	Read         bool    `json:"read"`
	Delivered    bool    `json:"delivered"`
	ScheduledFor *string `json:"scheduledFor,omitempty"`
	CreatedAt    string  `json:"createdAt"`
}

type adminActionPayload struct {
	ID          string         `json:"id"`
	ActionType  string         `json:"actionType"`
	TargetCodes []string       `json:"targetCodes"`
	PerformedBy string         `json:"performedBy"`
	Result      map[string]any `json:"result"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"createdAt"`
}

func newSlotPayload(slot application.Slot) slotPayload {
	return slotPayload{
		ID:            slot.ID,
		LinkID:        slot.LinkID,
		Label:         slot.Label,
		Date:          slot.Date,
		Time:          slot.Time,
		Status:        string(slot.Status),
		ManagerCode:   slot.ManagerCode,
		CandidateCode: slot.CandidateCode,
		Notes:         slot.Notes,
		UpdatedAt:     slot.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func newSettingsPayload(settings application.PassSettings) settingsPayload {
	return settingsPayload{
		PassCode:             settings.PassCode,
		Theme:                settings.Theme,
		Language:             settings.Language,
		Timezone:             settings.Timezone,
		NotificationsEnabled: settings.NotificationsEnabled,
		UpdatedAt:            settings.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func newNotificationPayload(notification application.Notification) notificationPayload {
	payload := notificationPayload{
		ID:        notification.ID,
		PassCode:  notification.PassCode,
		Type:      notification.Type,
		Title:     notification.Title,
		Body:      notification.Body,
		Priority:  string(notification.Priority),
		Read:      notification.Read,
		Delivered: notification.Delivered,
		CreatedAt: notification.CreatedAt.UTC().Format(time.RFC3339),
	}
	if notification.ScheduledFor != nil {
		scheduled := notification.ScheduledFor.UTC().Format(time.RFC3339)
		payload.ScheduledFor = &scheduled
	}
	return payload
}

func newAdminActionPayload(action application.AdminAction) adminActionPayload {
	return adminActionPayload{
		ID:          action.ID,
		ActionType:  action.ActionType,
		TargetCodes: action.TargetCodes,
		PerformedBy: action.PerformedBy,
		Result:      action.Result,
		Status:      action.Status,
		CreatedAt:   action.CreatedAt.UTC().Format(time.RFC3339),
	}
}
