package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type adminActionRepoStub struct {
	actions []AdminAction
}

func (r *adminActionRepoStub) CreateAdminAction(ctx context.Context, action AdminAction) (AdminAction, error) {
	r.actions = append([]AdminAction{action}, r.actions...)
	return action, nil
}

func (r *adminActionRepoStub) ListAdminActions(ctx context.Context) ([]AdminAction, error) {
	return append([]AdminAction(nil), r.actions...), nil
}

// failingSender rejects configured pass-codes and delegates the rest.
type failingSender struct {
	inner   notificationSender
	failFor map[string]bool
}

func (s *failingSender) Create(ctx context.Context, input NotificationInput) (Notification, error) {
	if s.failFor[input.PassCode] {
		return Notification{}, fmt.Errorf("delivery refused for %s", input.PassCode)
	}
	return s.inner.Create(ctx, input)
}

func newTestAdminService(actions *adminActionRepoStub, sender notificationSender, broadcaster *recordingBroadcaster) *AdminService {
	ids := 0
	return NewAdminService(actions, sender, broadcaster, func() string {
		ids++
		return fmt.Sprintf("action-%d", ids)
	}, fixedNow)
}

func TestAdminService_Broadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("validates required fields", func(t *testing.T) {
		svc := newTestAdminService(&adminActionRepoStub{}, newTestNotificationService(newNotificationRepoStub(), &recordingBroadcaster{}), &recordingBroadcaster{})

		_, err := svc.Broadcast(ctx, BroadcastParams{})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["title"]; !ok {
			t.Fatalf("expected title validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["target_codes"]; !ok {
			t.Fatalf("expected target_codes validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("sends one notification per target and records the run", func(t *testing.T) {
		broadcaster := &recordingBroadcaster{}
		repo := newNotificationRepoStub()
		actions := &adminActionRepoStub{}
		svc := newTestAdminService(actions, newTestNotificationService(repo, broadcaster), broadcaster)

		action, err := svc.Broadcast(ctx, BroadcastParams{
			Title:       "Office closed Friday",
			Body:        "Building maintenance.",
			TargetCodes: []string{"PASS-001", "PASS-002"},
			PerformedBy: "hr-admin",
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if len(repo.notifications) != 2 {
			t.Fatalf("expected two notifications persisted, got %d", len(repo.notifications))
		}
		if len(broadcaster.notifications) != 2 {
			t.Fatalf("expected each notification broadcast, got %d", len(broadcaster.notifications))
		}
		if action.Status != "completed" || action.ActionType != "broadcast" {
			t.Fatalf("expected completed broadcast action, got %+v", action)
		}
		if got := action.Result["sent"]; got != 2 {
			t.Fatalf("expected sent count 2, got %v", got)
		}
		if len(broadcaster.actions) != 1 {
			t.Fatalf("expected the action announced once, got %d", len(broadcaster.actions))
		}
	})

	t.Run("counts failed targets without aborting the run", func(t *testing.T) {
		broadcaster := &recordingBroadcaster{}
		sender := &failingSender{
			inner:   newTestNotificationService(newNotificationRepoStub(), broadcaster),
			failFor: map[string]bool{"PASS-002": true},
		}
		svc := newTestAdminService(&adminActionRepoStub{}, sender, broadcaster)

		action, err := svc.Broadcast(ctx, BroadcastParams{
			Title:       "Heads up",
			TargetCodes: []string{"PASS-001", "PASS-002", "PASS-003"},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if got := action.Result["sent"]; got != 2 {
			t.Fatalf("expected sent count 2, got %v", got)
		}
		failed, ok := action.Result["failed"].([]string)
		if !ok || len(failed) != 1 || failed[0] != "PASS-002" {
			t.Fatalf("expected PASS-002 recorded as failed, got %v", action.Result["failed"])
		}
	})
}

func TestAdminService_BatchOnboard(t *testing.T) {
	ctx := context.Background()

	t.Run("requires targets", func(t *testing.T) {
		svc := newTestAdminService(&adminActionRepoStub{}, newTestNotificationService(newNotificationRepoStub(), &recordingBroadcaster{}), &recordingBroadcaster{})

		_, err := svc.BatchOnboard(ctx, OnboardParams{})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("seeds welcome notifications at high priority", func(t *testing.T) {
		broadcaster := &recordingBroadcaster{}
		repo := newNotificationRepoStub()
		svc := newTestAdminService(&adminActionRepoStub{}, newTestNotificationService(repo, broadcaster), broadcaster)

		action, err := svc.BatchOnboard(ctx, OnboardParams{TargetCodes: []string{"PASS-010", "PASS-011"}, PerformedBy: "hr-admin"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if action.ActionType != "batch_onboard" {
			t.Fatalf("expected batch_onboard action, got %s", action.ActionType)
		}
		if got := action.Result["onboarded"]; got != 2 {
			t.Fatalf("expected onboarded count 2, got %v", got)
		}
		for _, id := range repo.order {
			n := repo.notifications[id]
			if n.Type != "onboarding" || n.Priority != PriorityHigh {
				t.Fatalf("expected high-priority onboarding notifications, got %+v", n)
			}
		}
	})
}

func TestAdminService_ListActions(t *testing.T) {
	ctx := context.Background()
	broadcaster := &recordingBroadcaster{}
	actions := &adminActionRepoStub{}
	svc := newTestAdminService(actions, newTestNotificationService(newNotificationRepoStub(), broadcaster), broadcaster)

	if _, err := svc.Broadcast(ctx, BroadcastParams{Title: "First", TargetCodes: []string{"PASS-001"}}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, err := svc.Broadcast(ctx, BroadcastParams{Title: "Second", TargetCodes: []string{"PASS-001"}}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	listed, err := svc.ListActions(ctx)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected two actions, got %d", len(listed))
	}
	if listed[0].ID != "action-2" {
		t.Fatalf("expected newest action first, got %s", listed[0].ID)
	}
}
