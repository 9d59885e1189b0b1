package application

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// AdminActionRepository captures the persistence interactions needed by the
// admin service.
type AdminActionRepository interface {
	CreateAdminAction(ctx context.Context, action AdminAction) (AdminAction, error)
	ListAdminActions(ctx context.Context) ([]AdminAction, error)
}

// notificationSender is the slice of NotificationService the admin service
// depends on; bulk operations reuse the same immediate-delivery path as
// directly created notifications.
type notificationSender interface {
	Create(ctx context.Context, input NotificationInput) (Notification, error)
}

// AdminService performs bulk operations across many pass-codes. Each
// completed operation is recorded as an immutable audit action and announced
// to the affected subscribers. The audit record is written only once the bulk
// work has finished; there is no partial in-progress record.
type AdminService struct {
	actions       AdminActionRepository
	notifications notificationSender
	broadcaster   Broadcaster
	idGenerator   func() string
	now           func() time.Time
}

// NewAdminService wires dependencies for admin operations.
func NewAdminService(actions AdminActionRepository, notifications notificationSender, broadcaster Broadcaster, idGenerator func() string, now func() time.Time) *AdminService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AdminService{
		actions:       actions,
		notifications: notifications,
		broadcaster:   broadcaster,
		idGenerator:   idGenerator,
		now:           now,
	}
}

// BroadcastParams describes an admin broadcast to a set of pass-codes.
type BroadcastParams struct {
	Title       string
	Body        string
	TargetCodes []string
	PerformedBy string
	Priority    NotificationPriority
}

// Broadcast creates one immediate notification per target pass-code, records
// the operation as an audit action, and announces the action.
func (s *AdminService) Broadcast(ctx context.Context, params BroadcastParams) (AdminAction, error) {
	if s == nil || s.actions == nil || s.notifications == nil {
		return AdminAction{}, fmt.Errorf("AdminService is not configured")
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(params.Title) == "" {
		vErr.add("title", "title is required")
	}
	if len(params.TargetCodes) == 0 {
		vErr.add("target_codes", "at least one target pass code is required")
	}
	if vErr.HasErrors() {
		return AdminAction{}, vErr
	}

	priority := params.Priority
	if priority == "" {
		priority = PriorityNormal
	}

	sent := 0
	failed := make([]string, 0)
	for _, code := range params.TargetCodes {
		_, err := s.notifications.Create(ctx, NotificationInput{
			PassCode: code,
			Type:     "broadcast",
			Title:    params.Title,
			Body:     params.Body,
			Priority: priority,
		})
		if err != nil {
			failed = append(failed, code)
			continue
		}
		sent++
	}

	result := map[string]any{"sent": sent}
	if len(failed) > 0 {
		result["failed"] = failed
	}

	return s.record(ctx, "broadcast", params.TargetCodes, params.PerformedBy, result)
}

// OnboardParams describes a batch onboarding run.
type OnboardParams struct {
	TargetCodes []string
	PerformedBy string
}

// BatchOnboard seeds each target pass-code with its onboarding welcome
// notification, records the run as an audit action, and announces it.
func (s *AdminService) BatchOnboard(ctx context.Context, params OnboardParams) (AdminAction, error) {
	if s == nil || s.actions == nil || s.notifications == nil {
		return AdminAction{}, fmt.Errorf("AdminService is not configured")
	}

	if len(params.TargetCodes) == 0 {
		vErr := &ValidationError{}
		vErr.add("target_codes", "at least one target pass code is required")
		return AdminAction{}, vErr
	}

	onboarded := 0
	failed := make([]string, 0)
	for _, code := range params.TargetCodes {
		_, err := s.notifications.Create(ctx, NotificationInput{
			PassCode: code,
			Type:     "onboarding",
			Title:    "Welcome aboard",
			Body:     "Your onboarding pass is ready. Check your timeline for first-day details.",
			Priority: PriorityHigh,
		})
		if err != nil {
			failed = append(failed, code)
			continue
		}
		onboarded++
	}

	result := map[string]any{"onboarded": onboarded}
	if len(failed) > 0 {
		result["failed"] = failed
	}

	return s.record(ctx, "batch_onboard", params.TargetCodes, params.PerformedBy, result)
}

// ListActions returns the audit trail, newest first.
func (s *AdminService) ListActions(ctx context.Context) ([]AdminAction, error) {
	if s == nil || s.actions == nil {
		return nil, fmt.Errorf("AdminService is not configured")
	}
	return s.actions.ListAdminActions(ctx)
}

func (s *AdminService) record(ctx context.Context, actionType string, codes []string, performer string, result map[string]any) (AdminAction, error) {
	action := AdminAction{
		ID:          s.idGenerator(),
		ActionType:  actionType,
		TargetCodes: append([]string(nil), codes...),
		PerformedBy: performer,
		Result:      result,
		Status:      "completed",
		CreatedAt:   s.now(),
	}

	persisted, err := s.actions.CreateAdminAction(ctx, action)
	if err != nil {
		return AdminAction{}, err
	}

	if s.broadcaster != nil {
		s.broadcaster.PublishAdminAction(persisted, persisted.TargetCodes)
	}
	return persisted, nil
}
