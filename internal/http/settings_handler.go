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

type settingsService interface {
	Get(ctx context.Context, passCode string) (application.PassSettings, error)
	Upsert(ctx context.Context, passCode string, input application.SettingsInput) (application.PassSettings, error)
	Patch(ctx context.Context, passCode string, patch application.SettingsPatch) (application.PassSettings, error)
}

// SettingsHandler exposes the per-pass-code settings document.
type SettingsHandler struct {
	service   settingsService
	responder responder
}

func NewSettingsHandler(service settingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{service: service, responder: newResponder(logger)}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	passCode, ok := PassCodeFromContext(r.Context())
	if !ok || strings.TrimSpace(passCode) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPassCode)
		return
	}

	settings, err := h.service.Get(r.Context(), passCode)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: newSettingsDTO(settings)})
}

func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	passCode, ok := PassCodeFromContext(r.Context())
	if !ok || strings.TrimSpace(passCode) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPassCode)
		return
	}

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	settings, err := h.service.Upsert(r.Context(), passCode, application.SettingsInput{
		Theme:                req.Theme,
		Language:             req.Language,
		Timezone:             req.Timezone,
		NotificationsEnabled: req.NotificationsEnabled,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: newSettingsDTO(settings)})
}

func (h *SettingsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	passCode, ok := PassCodeFromContext(r.Context())
	if !ok || strings.TrimSpace(passCode) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPassCode)
		return
	}

	var req settingsPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	settings, err := h.service.Patch(r.Context(), passCode, application.SettingsPatch{
		Theme:                req.Theme,
		Language:             req.Language,
		Timezone:             req.Timezone,
		NotificationsEnabled: req.NotificationsEnabled,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, settingsResponse{Settings: newSettingsDTO(settings)})
}

type settingsRequest struct {
	Theme                string `json:"theme"`
	Language             string `json:"language"`
	Timezone             string `json:"timezone"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

type settingsPatchRequest struct {
	Theme                *string `json:"theme"`
	Language             *string `json:"language"`
	Timezone             *string `json:"timezone"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

type settingsDTO struct {
	PassCode             string `json:"pass_code"`
	Theme                string `json:"theme"`
	Language             string `json:"language"`
	Timezone             string `json:"timezone"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	UpdatedAt            string `json:"updated_at"`
}

func newSettingsDTO(settings application.PassSettings) settingsDTO {
	return settingsDTO{
		PassCode:             settings.PassCode,
		Theme:                settings.Theme,
		Language:             settings.Language,
		Timezone:             settings.Timezone,
		NotificationsEnabled: settings.NotificationsEnabled,
		UpdatedAt:            settings.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type settingsResponse struct {
	Settings settingsDTO `json:"settings"`
}
