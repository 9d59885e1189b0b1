package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/talent-pass/internal/application"
)

type adminService interface {
	Broadcast(ctx context.Context, params application.BroadcastParams) (application.AdminAction, error)
	BatchOnboard(ctx context.Context, params application.OnboardParams) (application.AdminAction, error)
	ListActions(ctx context.Context) ([]application.AdminAction, error)
}

// AdminHandler exposes bulk operations and the audit trail.
type AdminHandler struct {
	service   adminService
	responder responder
}

func NewAdminHandler(service adminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: service, responder: newResponder(logger)}
}

func (h *AdminHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	action, err := h.service.Broadcast(r.Context(), application.BroadcastParams{
		Title:       req.Title,
		Body:        req.Body,
		TargetCodes: req.TargetCodes,
		PerformedBy: req.PerformedBy,
		Priority:    application.NotificationPriority(req.Priority),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, adminActionResponse{Action: newAdminActionDTO(action)})
}

func (h *AdminHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req onboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	action, err := h.service.BatchOnboard(r.Context(), application.OnboardParams{
		TargetCodes: req.TargetCodes,
		PerformedBy: req.PerformedBy,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, adminActionResponse{Action: newAdminActionDTO(action)})
}

func (h *AdminHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actions, err := h.service.ListActions(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]adminActionDTO, 0, len(actions))
	for _, action := range actions {
		dtos = append(dtos, newAdminActionDTO(action))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, adminActionsResponse{Actions: dtos})
}

type broadcastRequest struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	TargetCodes []string `json:"target_codes"`
	PerformedBy string   `json:"performed_by"`
	Priority    string   `json:"priority"`
}

type onboardRequest struct {
	TargetCodes []string `json:"target_codes"`
	PerformedBy string   `json:"performed_by"`
}

type adminActionDTO struct {
	ID          string         `json:"id"`
	ActionType  string         `json:"action_type"`
	TargetCodes []string       `json:"target_codes"`
	PerformedBy string         `json:"performed_by"`
	Result      map[string]any `json:"result"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at"`
}

func newAdminActionDTO(action application.AdminAction) adminActionDTO {
	return adminActionDTO{
		ID:          action.ID,
		ActionType:  action.ActionType,
		TargetCodes: action.TargetCodes,
		PerformedBy: action.PerformedBy,
		Result:      action.Result,
		Status:      action.Status,
		CreatedAt:   action.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type adminActionResponse struct {
	Action adminActionDTO `json:"action"`
}

type adminActionsResponse struct {
	Actions []adminActionDTO `json:"actions"`
}
