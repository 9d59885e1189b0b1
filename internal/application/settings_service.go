package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/talent-pass/internal/persistence"
)

// SettingsRepository captures the persistence interactions needed by the
// settings service.
type SettingsRepository interface {
	UpsertSettings(ctx context.Context, settings PassSettings) (PassSettings, error)
	GetSettings(ctx context.Context, passCode string) (PassSettings, error)
}

// SettingsService owns per-pass-code settings documents. Every successful
// write is broadcast to the pass-code's subscribers.
type SettingsService struct {
	settings    SettingsRepository
	broadcaster Broadcaster
	now         func() time.Time
}

// NewSettingsService wires dependencies for settings operations.
func NewSettingsService(settings SettingsRepository, broadcaster Broadcaster, now func() time.Time) *SettingsService {
	if now == nil {
		now = time.Now
	}
	return &SettingsService{settings: settings, broadcaster: broadcaster, now: now}
}

// Get returns the settings document for a pass-code, falling back to defaults
// when none has been stored yet.
func (s *SettingsService) Get(ctx context.Context, passCode string) (PassSettings, error) {
	if s == nil || s.settings == nil {
		return PassSettings{}, fmt.Errorf("SettingsService is not configured")
	}

	settings, err := s.settings.GetSettings(ctx, passCode)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
			return defaultSettings(passCode), nil
		}
		return PassSettings{}, err
	}
	return settings, nil
}

// Upsert replaces the settings document for a pass-code and broadcasts the
// result.
func (s *SettingsService) Upsert(ctx context.Context, passCode string, input SettingsInput) (PassSettings, error) {
	if s == nil || s.settings == nil {
		return PassSettings{}, fmt.Errorf("SettingsService is not configured")
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(passCode) == "" {
		vErr.add("pass_code", "pass code is required")
	}
	if vErr.HasErrors() {
		return PassSettings{}, vErr
	}

	now := s.now()
	settings := defaultSettings(passCode)
	if existing, err := s.settings.GetSettings(ctx, passCode); err == nil {
		settings.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, persistence.ErrNotFound) && !errors.Is(err, ErrNotFound) {
		return PassSettings{}, err
	} else {
		settings.CreatedAt = now
	}

	if strings.TrimSpace(input.Theme) != "" {
		settings.Theme = strings.TrimSpace(input.Theme)
	}
	if strings.TrimSpace(input.Language) != "" {
		settings.Language = strings.TrimSpace(input.Language)
	}
	if strings.TrimSpace(input.Timezone) != "" {
		settings.Timezone = strings.TrimSpace(input.Timezone)
	}
	settings.NotificationsEnabled = input.NotificationsEnabled
	settings.UpdatedAt = now

	persisted, err := s.settings.UpsertSettings(ctx, settings)
	if err != nil {
		return PassSettings{}, err
	}

	s.publish(persisted)
	return persisted, nil
}

// Patch applies a partial change to the settings document and broadcasts the
// result. Absent fields are left untouched.
func (s *SettingsService) Patch(ctx context.Context, passCode string, patch SettingsPatch) (PassSettings, error) {
	if s == nil || s.settings == nil {
		return PassSettings{}, fmt.Errorf("SettingsService is not configured")
	}

	settings, err := s.Get(ctx, passCode)
	if err != nil {
		return PassSettings{}, err
	}
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = s.now()
	}

	if patch.Theme != nil {
		settings.Theme = strings.TrimSpace(*patch.Theme)
	}
	if patch.Language != nil {
		settings.Language = strings.TrimSpace(*patch.Language)
	}
	if patch.Timezone != nil {
		settings.Timezone = strings.TrimSpace(*patch.Timezone)
	}
	if patch.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *patch.NotificationsEnabled
	}
	settings.UpdatedAt = s.now()

	persisted, err := s.settings.UpsertSettings(ctx, settings)
	if err != nil {
		return PassSettings{}, err
	}

	s.publish(persisted)
	return persisted, nil
}

func (s *SettingsService) publish(settings PassSettings) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.PublishSettings(settings.PassCode, settings)
}

func defaultSettings(passCode string) PassSettings {
	return PassSettings{
		PassCode:             passCode,
		Theme:                "light",
		Language:             "en",
		Timezone:             "UTC",
		NotificationsEnabled: true,
	}
}
