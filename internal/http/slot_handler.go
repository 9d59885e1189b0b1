package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/talent-pass/internal/application"
)

type slotService interface {
	CreateSlot(ctx context.Context, input application.SlotInput) (application.Slot, error)
	UpdateSlot(ctx context.Context, id string, delta application.SlotDelta) (application.Slot, error)
	DeleteSlot(ctx context.Context, id string) error
	ListByLink(ctx context.Context, linkID string) ([]application.Slot, error)
	ListByManager(ctx context.Context, managerCode string) ([]application.Slot, error)
	ListByCandidate(ctx context.Context, candidateCode string) ([]application.Slot, error)
}

// SlotHandler exposes slot creation, mutation and query endpoints.
type SlotHandler struct {
	service   slotService
	responder responder
}

func NewSlotHandler(service slotService, logger *slog.Logger) *SlotHandler {
	return &SlotHandler{service: service, responder: newResponder(logger)}
}

func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	slot, err := h.service.CreateSlot(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, slotResponse{Slot: newSlotDTO(slot)})
}

func (h *SlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	slotID, ok := SlotIDFromContext(r.Context())
	if !ok || strings.TrimSpace(slotID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSlotID)
		return
	}

	var req updateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	slot, err := h.service.UpdateSlot(r.Context(), slotID, req.toDelta())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, slotResponse{Slot: newSlotDTO(slot)})
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	slotID, ok := SlotIDFromContext(r.Context())
	if !ok || strings.TrimSpace(slotID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSlotID)
		return
	}

	if err := h.service.DeleteSlot(r.Context(), slotID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// List queries slots by exactly one of link_id, manager_code or
// candidate_code.
func (h *SlotHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	linkID := strings.TrimSpace(query.Get("link_id"))
	managerCode := strings.TrimSpace(query.Get("manager_code"))
	candidateCode := strings.TrimSpace(query.Get("candidate_code"))

	provided := 0
	for _, value := range []string{linkID, managerCode, candidateCode} {
		if value != "" {
			provided++
		}
	}
	if provided != 1 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest,
			errors.New("exactly one of link_id, manager_code or candidate_code is required"))
		return
	}

	var (
		slots []application.Slot
		err   error
	)
	switch {
	case linkID != "":
		slots, err = h.service.ListByLink(r.Context(), linkID)
	case managerCode != "":
		slots, err = h.service.ListByManager(r.Context(), managerCode)
	default:
		slots, err = h.service.ListByCandidate(r.Context(), candidateCode)
	}
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		dtos = append(dtos, newSlotDTO(slot))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, slotsResponse{Slots: dtos})
}

type createSlotRequest struct {
	LinkID      string  `json:"link_id"`
	Label       string  `json:"label"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Status      string  `json:"status"`
	ManagerCode string  `json:"manager_code"`
	Notes       *string `json:"notes"`
}

func (r createSlotRequest) toInput() application.SlotInput {
	return application.SlotInput{
		LinkID:      r.LinkID,
		Label:       r.Label,
		Date:        r.Date,
		Time:        r.Time,
		Status:      application.SlotStatus(r.Status),
		ManagerCode: r.ManagerCode,
		Notes:       r.Notes,
	}
}

type updateSlotRequest struct {
	Label         *string `json:"label"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	Status        *string `json:"status"`
	CandidateCode *string `json:"candidate_code"`
	Notes         *string `json:"notes"`
}

func (r updateSlotRequest) toDelta() application.SlotDelta {
	delta := application.SlotDelta{
		Label:         r.Label,
		Date:          r.Date,
		Time:          r.Time,
		CandidateCode: r.CandidateCode,
		Notes:         r.Notes,
	}
	if r.Status != nil {
		status := application.SlotStatus(*r.Status)
		delta.Status = &status
	}
	return delta
}

type slotDTO struct {
	ID            string  `json:"id"`
	LinkID        string  `json:"link_id"`
	Label         string  `json:"label"`
	Date          string  `json:"date"`
	Time          string  `json:"time"`
	Status        string  `json:"status"`
	ManagerCode   string  `json:"manager_code"`
	CandidateCode *string `json:"candidate_code,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func newSlotDTO(slot application.Slot) slotDTO {
	return slotDTO{
		ID:            slot.ID,
		LinkID:        slot.LinkID,
		Label:         slot.Label,
		Date:          slot.Date,
		Time:          slot.Time,
		Status:        string(slot.Status),
		ManagerCode:   slot.ManagerCode,
		CandidateCode: slot.CandidateCode,
		Notes:         slot.Notes,
		CreatedAt:     slot.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     slot.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type slotResponse struct {
	Slot slotDTO `json:"slot"`
}

type slotsResponse struct {
	Slots []slotDTO `json:"slots"`
}
