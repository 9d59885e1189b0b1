package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/talent-pass/internal/application"
)

type slotServiceStub struct {
	createFn func(ctx context.Context, input application.SlotInput) (application.Slot, error)
	updateFn func(ctx context.Context, id string, delta application.SlotDelta) (application.Slot, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, key string) ([]application.Slot, error)
}

func (s *slotServiceStub) CreateSlot(ctx context.Context, input application.SlotInput) (application.Slot, error) {
	return s.createFn(ctx, input)
}

func (s *slotServiceStub) UpdateSlot(ctx context.Context, id string, delta application.SlotDelta) (application.Slot, error) {
	return s.updateFn(ctx, id, delta)
}

func (s *slotServiceStub) DeleteSlot(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *slotServiceStub) ListByLink(ctx context.Context, linkID string) ([]application.Slot, error) {
	return s.listFn(ctx, linkID)
}

func (s *slotServiceStub) ListByManager(ctx context.Context, managerCode string) ([]application.Slot, error) {
	return s.listFn(ctx, managerCode)
}

func (s *slotServiceStub) ListByCandidate(ctx context.Context, candidateCode string) ([]application.Slot, error) {
	return s.listFn(ctx, candidateCode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleSlot() application.Slot {
	created := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	return application.Slot{
		ID:          "slot-1",
		LinkID:      "link-1",
		Label:       "Morning interview",
		Date:        "2026-09-02",
		Time:        "10:00",
		Status:      application.SlotOpen,
		ManagerCode: "MGR-001",
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func newSlotRouter(stub *slotServiceStub) http.Handler {
	return NewRouter(RouterConfig{Slots: NewSlotHandler(stub, testLogger())})
}

func TestSlotHandlers(t *testing.T) {
	t.Run("create returns the persisted slot", func(t *testing.T) {
		stub := &slotServiceStub{
			createFn: func(ctx context.Context, input application.SlotInput) (application.Slot, error) {
				if input.LinkID != "link-1" || input.Label != "Morning interview" {
					t.Fatalf("unexpected input: %+v", input)
				}
				return sampleSlot(), nil
			},
		}

		body := `{"link_id":"link-1","label":"Morning interview","date":"2026-09-02","time":"10:00","manager_code":"MGR-001"}`
		req := httptest.NewRequest(http.MethodPost, "/slots", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newSlotRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp slotResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Slot.ID != "slot-1" || resp.Slot.Status != "open" {
			t.Fatalf("unexpected payload: %+v", resp.Slot)
		}
	})

	t.Run("create maps validation failures to 422 with field details", func(t *testing.T) {
		stub := &slotServiceStub{
			createFn: func(ctx context.Context, input application.SlotInput) (application.Slot, error) {
				return application.Slot{}, &application.ValidationError{FieldErrors: map[string]string{
					"link_id": "link id is required",
				}}
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/slots", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		newSlotRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Errors["link_id"] == "" {
			t.Fatalf("expected field error for link_id, got %+v", resp)
		}
	})

	t.Run("create rejects malformed JSON", func(t *testing.T) {
		stub := &slotServiceStub{
			createFn: func(ctx context.Context, input application.SlotInput) (application.Slot, error) {
				t.Fatalf("service should not be reached")
				return application.Slot{}, nil
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/slots", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		newSlotRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("update maps NotFound to 404", func(t *testing.T) {
		stub := &slotServiceStub{
			updateFn: func(ctx context.Context, id string, delta application.SlotDelta) (application.Slot, error) {
				return application.Slot{}, application.ErrNotFound
			},
		}

		req := httptest.NewRequest(http.MethodPut, "/slots/missing", strings.NewReader(`{"status":"held"}`))
		rec := httptest.NewRecorder()
		newSlotRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("delete returns 204", func(t *testing.T) {
		stub := &slotServiceStub{
			deleteFn: func(ctx context.Context, id string) error {
				if id != "slot-1" {
					t.Fatalf("unexpected id %q", id)
				}
				return nil
			},
		}

		req := httptest.NewRequest(http.MethodDelete, "/slots/slot-1", nil)
		rec := httptest.NewRecorder()
		newSlotRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})

	t.Run("list requires exactly one query key", func(t *testing.T) {
		stub := &slotServiceStub{
			listFn: func(ctx context.Context, key string) ([]application.Slot, error) {
				return []application.Slot{sampleSlot()}, nil
			},
		}
		router := newSlotRouter(stub)

		for _, target := range []string{"/slots", "/slots?link_id=l&manager_code=m"} {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for %s, got %d", target, rec.Code)
			}
		}

		req := httptest.NewRequest(http.MethodGet, "/slots?link_id=link-1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp slotsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Slots) != 1 {
			t.Fatalf("expected one slot, got %d", len(resp.Slots))
		}
	})

	t.Run("unsupported methods return 405 with Allow header", func(t *testing.T) {
		stub := &slotServiceStub{}
		req := httptest.NewRequest(http.MethodPatch, "/slots", nil)
		rec := httptest.NewRecorder()
		newSlotRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
			t.Fatalf("expected Allow header, got %q", allow)
		}
	})
}

type notificationServiceStub struct {
	createFn     func(ctx context.Context, input application.NotificationInput) (application.Notification, error)
	markReadFn   func(ctx context.Context, id string) (application.Notification, error)
	listFn       func(ctx context.Context, passCode string) ([]application.Notification, error)
	listUnreadFn func(ctx context.Context, passCode string) ([]application.Notification, error)
	milestonesFn func(ctx context.Context, passCode string, milestones []application.TimelineMilestone) ([]application.Notification, error)
}

func (s *notificationServiceStub) Create(ctx context.Context, input application.NotificationInput) (application.Notification, error) {
	return s.createFn(ctx, input)
}

func (s *notificationServiceStub) MarkRead(ctx context.Context, id string) (application.Notification, error) {
	return s.markReadFn(ctx, id)
}

func (s *notificationServiceStub) ListForCode(ctx context.Context, passCode string) ([]application.Notification, error) {
	return s.listFn(ctx, passCode)
}

func (s *notificationServiceStub) ListUnread(ctx context.Context, passCode string) ([]application.Notification, error) {
	return s.listUnreadFn(ctx, passCode)
}

func (s *notificationServiceStub) GenerateMilestoneReminders(ctx context.Context, passCode string, milestones []application.TimelineMilestone) ([]application.Notification, error) {
	return s.milestonesFn(ctx, passCode, milestones)
}

func newNotificationRouter(stub *notificationServiceStub) http.Handler {
	return NewRouter(RouterConfig{Notifications: NewNotificationHandler(stub, testLogger())})
}

func sampleDeliveredNotification() application.Notification {
	created := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	return application.Notification{
		ID:        "n-1",
		PassCode:  "PASS-001",
		Type:      "reminder",
		Title:     "Upcoming interview",
		Priority:  application.PriorityNormal,
		Delivered: true,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestNotificationHandlers(t *testing.T) {
	t.Run("create parses the schedule timestamp", func(t *testing.T) {
		stub := &notificationServiceStub{
			createFn: func(ctx context.Context, input application.NotificationInput) (application.Notification, error) {
				if input.ScheduledFor == nil || !input.ScheduledFor.Equal(time.Date(2026, time.September, 2, 10, 0, 0, 0, time.UTC)) {
					t.Fatalf("unexpected schedule: %v", input.ScheduledFor)
				}
				return sampleDeliveredNotification(), nil
			},
		}

		body := `{"pass_code":"PASS-001","title":"Upcoming interview","scheduled_for":"2026-09-02T10:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newNotificationRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("create rejects a malformed schedule timestamp", func(t *testing.T) {
		stub := &notificationServiceStub{
			createFn: func(ctx context.Context, input application.NotificationInput) (application.Notification, error) {
				t.Fatalf("service should not be reached")
				return application.Notification{}, nil
			},
		}

		body := `{"pass_code":"PASS-001","title":"Oops","scheduled_for":"tomorrow"}`
		req := httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newNotificationRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("mark read maps InvalidState to 409", func(t *testing.T) {
		stub := &notificationServiceStub{
			markReadFn: func(ctx context.Context, id string) (application.Notification, error) {
				return application.Notification{}, application.ErrInvalidState
			},
		}

		req := httptest.NewRequest(http.MethodPost, "/notifications/n-1/read", nil)
		rec := httptest.NewRecorder()
		newNotificationRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("list selects unread when requested", func(t *testing.T) {
		stub := &notificationServiceStub{
			listFn: func(ctx context.Context, passCode string) ([]application.Notification, error) {
				t.Fatalf("expected the unread listing")
				return nil, nil
			},
			listUnreadFn: func(ctx context.Context, passCode string) ([]application.Notification, error) {
				if passCode != "PASS-001" {
					t.Fatalf("unexpected pass code %q", passCode)
				}
				return []application.Notification{sampleDeliveredNotification()}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/notifications?pass_code=PASS-001&unread=true", nil)
		rec := httptest.NewRecorder()
		newNotificationRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp notificationsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Notifications) != 1 {
			t.Fatalf("expected one notification, got %d", len(resp.Notifications))
		}
	})

	t.Run("milestone derivation forwards the timeline", func(t *testing.T) {
		stub := &notificationServiceStub{
			milestonesFn: func(ctx context.Context, passCode string, milestones []application.TimelineMilestone) ([]application.Notification, error) {
				if passCode != "PASS-001" || len(milestones) != 1 || milestones[0].Title != "Final round" {
					t.Fatalf("unexpected request: %s %+v", passCode, milestones)
				}
				return []application.Notification{sampleDeliveredNotification()}, nil
			},
		}

		body := `{"pass_code":"PASS-001","milestones":[{"title":"Final round","date":"2026-09-02T10:00:00Z","status":"upcoming"}]}`
		req := httptest.NewRequest(http.MethodPost, "/notifications/milestones", strings.NewReader(body))
		rec := httptest.NewRecorder()
		newNotificationRouter(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

type settingsServiceStub struct {
	getFn    func(ctx context.Context, passCode string) (application.PassSettings, error)
	upsertFn func(ctx context.Context, passCode string, input application.SettingsInput) (application.PassSettings, error)
	patchFn  func(ctx context.Context, passCode string, patch application.SettingsPatch) (application.PassSettings, error)
}

func (s *settingsServiceStub) Get(ctx context.Context, passCode string) (application.PassSettings, error) {
	return s.getFn(ctx, passCode)
}

func (s *settingsServiceStub) Upsert(ctx context.Context, passCode string, input application.SettingsInput) (application.PassSettings, error) {
	return s.upsertFn(ctx, passCode, input)
}

func (s *settingsServiceStub) Patch(ctx context.Context, passCode string, patch application.SettingsPatch) (application.PassSettings, error) {
	return s.patchFn(ctx, passCode, patch)
}

func TestSettingsHandlers(t *testing.T) {
	router := func(stub *settingsServiceStub) http.Handler {
		return NewRouter(RouterConfig{Settings: NewSettingsHandler(stub, testLogger())})
	}

	t.Run("get returns the document for the path pass-code", func(t *testing.T) {
		stub := &settingsServiceStub{
			getFn: func(ctx context.Context, passCode string) (application.PassSettings, error) {
				if passCode != "PASS-001" {
					t.Fatalf("unexpected pass code %q", passCode)
				}
				return application.PassSettings{PassCode: passCode, Theme: "dark", Language: "en", Timezone: "UTC"}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/settings/PASS-001", nil)
		rec := httptest.NewRecorder()
		router(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp settingsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Settings.Theme != "dark" {
			t.Fatalf("unexpected payload: %+v", resp.Settings)
		}
	})

	t.Run("patch forwards only the provided fields", func(t *testing.T) {
		stub := &settingsServiceStub{
			patchFn: func(ctx context.Context, passCode string, patch application.SettingsPatch) (application.PassSettings, error) {
				if patch.Theme == nil || *patch.Theme != "dark" {
					t.Fatalf("expected theme patch, got %+v", patch)
				}
				if patch.Language != nil || patch.Timezone != nil || patch.NotificationsEnabled != nil {
					t.Fatalf("expected absent fields to stay nil, got %+v", patch)
				}
				return application.PassSettings{PassCode: passCode, Theme: "dark"}, nil
			},
		}

		req := httptest.NewRequest(http.MethodPatch, "/settings/PASS-001", strings.NewReader(`{"theme":"dark"}`))
		rec := httptest.NewRecorder()
		router(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

type adminServiceStub struct {
	broadcastFn func(ctx context.Context, params application.BroadcastParams) (application.AdminAction, error)
	onboardFn   func(ctx context.Context, params application.OnboardParams) (application.AdminAction, error)
	listFn      func(ctx context.Context) ([]application.AdminAction, error)
}

func (s *adminServiceStub) Broadcast(ctx context.Context, params application.BroadcastParams) (application.AdminAction, error) {
	return s.broadcastFn(ctx, params)
}

func (s *adminServiceStub) BatchOnboard(ctx context.Context, params application.OnboardParams) (application.AdminAction, error) {
	return s.onboardFn(ctx, params)
}

func (s *adminServiceStub) ListActions(ctx context.Context) ([]application.AdminAction, error) {
	return s.listFn(ctx)
}

func TestAdminHandlers(t *testing.T) {
	router := func(stub *adminServiceStub) http.Handler {
		return NewRouter(RouterConfig{Admin: NewAdminHandler(stub, testLogger())})
	}

	t.Run("broadcast returns the recorded action", func(t *testing.T) {
		stub := &adminServiceStub{
			broadcastFn: func(ctx context.Context, params application.BroadcastParams) (application.AdminAction, error) {
				if len(params.TargetCodes) != 2 || params.Title != "Office closed" {
					t.Fatalf("unexpected params: %+v", params)
				}
				return application.AdminAction{
					ID:          "action-1",
					ActionType:  "broadcast",
					TargetCodes: params.TargetCodes,
					Result:      map[string]any{"sent": 2},
					Status:      "completed",
					CreatedAt:   time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC),
				}, nil
			},
		}

		body := `{"title":"Office closed","target_codes":["PASS-001","PASS-002"]}`
		req := httptest.NewRequest(http.MethodPost, "/admin/broadcast", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp adminActionResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Action.Status != "completed" {
			t.Fatalf("unexpected payload: %+v", resp.Action)
		}
	})

	t.Run("actions listing returns the audit trail", func(t *testing.T) {
		stub := &adminServiceStub{
			listFn: func(ctx context.Context) ([]application.AdminAction, error) {
				return []application.AdminAction{{ID: "action-2"}, {ID: "action-1"}}, nil
			},
		}

		req := httptest.NewRequest(http.MethodGet, "/admin/actions", nil)
		rec := httptest.NewRecorder()
		router(stub).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp adminActionsResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Actions) != 2 || resp.Actions[0].ID != "action-2" {
			t.Fatalf("unexpected payload: %+v", resp.Actions)
		}
	})
}
