package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/talent-pass/internal/application"
)

type notificationService interface {
	Create(ctx context.Context, input application.NotificationInput) (application.Notification, error)
	MarkRead(ctx context.Context, id string) (application.Notification, error)
	ListForCode(ctx context.Context, passCode string) ([]application.Notification, error)
	ListUnread(ctx context.Context, passCode string) ([]application.Notification, error)
	GenerateMilestoneReminders(ctx context.Context, passCode string, milestones []application.TimelineMilestone) ([]application.Notification, error)
}

// NotificationHandler exposes notification creation, queries, read receipts
// and milestone reminder derivation.
type NotificationHandler struct {
	service   notificationService
	responder responder
}

func NewNotificationHandler(service notificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, responder: newResponder(logger)}
}

func (h *NotificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	notification, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, notificationResponse{Notification: newNotificationDTO(notification)})
}

// List returns the notifications for a pass-code; unread=true restricts the
// result to delivered-but-unread entries.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	passCode := strings.TrimSpace(r.URL.Query().Get("pass_code"))
	if passCode == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPassCode)
		return
	}

	var (
		notifications []application.Notification
		err           error
	)
	if r.URL.Query().Get("unread") == "true" {
		notifications, err = h.service.ListUnread(r.Context(), passCode)
	} else {
		notifications, err = h.service.ListForCode(r.Context(), passCode)
	}
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]notificationDTO, 0, len(notifications))
	for _, notification := range notifications {
		dtos = append(dtos, newNotificationDTO(notification))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationsResponse{Notifications: dtos})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	notificationID, ok := NotificationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(notificationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidNotificationID)
		return
	}

	notification, err := h.service.MarkRead(r.Context(), notificationID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, notificationResponse{Notification: newNotificationDTO(notification)})
}

// GenerateMilestones derives reminder notifications from a candidate's
// timeline milestones.
func (h *NotificationHandler) GenerateMilestones(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req milestoneRemindersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if strings.TrimSpace(req.PassCode) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPassCode)
		return
	}

	milestones := make([]application.TimelineMilestone, 0, len(req.Milestones))
	for _, milestone := range req.Milestones {
		milestones = append(milestones, application.TimelineMilestone{
			Title:  milestone.Title,
			Date:   milestone.Date,
			Status: milestone.Status,
		})
	}

	created, err := h.service.GenerateMilestoneReminders(r.Context(), req.PassCode, milestones)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]notificationDTO, 0, len(created))
	for _, notification := range created {
		dtos = append(dtos, newNotificationDTO(notification))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, notificationsResponse{Notifications: dtos})
}

type createNotificationRequest struct {
	PassCode     string `json:"pass_code"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	Priority     string `json:"priority"`
	ScheduledFor string `json:"scheduled_for"`
}

func (r createNotificationRequest) toInput() (application.NotificationInput, error) {
	input := application.NotificationInput{
		PassCode: r.PassCode,
		Type:     r.Type,
		Title:    r.Title,
		Body:     r.Body,
		Priority: application.NotificationPriority(r.Priority),
	}
	if trimmed := strings.TrimSpace(r.ScheduledFor); trimmed != "" {
		at, err := time.Parse(time.RFC3339, trimmed)
		if err != nil {
			vErr := &application.ValidationError{FieldErrors: map[string]string{
				"scheduled_for": "scheduled_for must be an RFC 3339 timestamp",
			}}
			return application.NotificationInput{}, vErr
		}
		input.ScheduledFor = &at
	}
	return input, nil
}

type milestoneRemindersRequest struct {
	PassCode   string         `json:"pass_code"`
	Milestones []milestoneDTO `json:"milestones"`
}

type milestoneDTO struct {
	Title  string `json:"title"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

type notificationDTO struct {
	ID           string  `json:"id"`
	PassCode     string  `json:"pass_code"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	Priority     string  `json:"priority"`
	Read         bool    `json:"read"`
	Delivered    bool    `json:"delivered"`
	ScheduledFor *string `json:"scheduled_for,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func newNotificationDTO(notification application.Notification) notificationDTO {
	dto := notificationDTO{
		ID:        notification.ID,
		PassCode:  notification.PassCode,
		Type:      notification.Type,
		Title:     notification.Title,
		Body:      notification.Body,
		Priority:  string(notification.Priority),
		Read:      notification.Read,
		Delivered: notification.Delivered,
		CreatedAt: notification.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: notification.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if notification.ScheduledFor != nil {
		scheduled := notification.ScheduledFor.UTC().Format(time.RFC3339)
		dto.ScheduledFor = &scheduled
	}
	return dto
}

type notificationResponse struct {
	Notification notificationDTO `json:"notification"`
}

type notificationsResponse struct {
	Notifications []notificationDTO `json:"notifications"`
}
