package application

import (
	"context"
	"errors"
	"testing"
)

type settingsRepoStub struct {
	settings map[string]PassSettings
}

func newSettingsRepoStub() *settingsRepoStub {
	return &settingsRepoStub{settings: make(map[string]PassSettings)}
}

func (r *settingsRepoStub) UpsertSettings(ctx context.Context, settings PassSettings) (PassSettings, error) {
	r.settings[settings.PassCode] = settings
	return settings, nil
}

func (r *settingsRepoStub) GetSettings(ctx context.Context, passCode string) (PassSettings, error) {
	settings, ok := r.settings[passCode]
	if !ok {
		return PassSettings{}, ErrNotFound
	}
	return settings, nil
}

func TestSettingsService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to defaults for an unknown pass-code", func(t *testing.T) {
		svc := NewSettingsService(newSettingsRepoStub(), &recordingBroadcaster{}, fixedNow)

		settings, err := svc.Get(ctx, "PASS-001")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if settings.Theme != "light" || settings.Language != "en" || settings.Timezone != "UTC" {
			t.Fatalf("expected default document, got %+v", settings)
		}
		if !settings.NotificationsEnabled {
			t.Fatalf("expected notifications enabled by default")
		}
	})

	t.Run("returns the stored document when present", func(t *testing.T) {
		repo := newSettingsRepoStub()
		repo.settings["PASS-001"] = PassSettings{PassCode: "PASS-001", Theme: "dark", Language: "ja", Timezone: "Asia/Tokyo"}
		svc := NewSettingsService(repo, &recordingBroadcaster{}, fixedNow)

		settings, err := svc.Get(ctx, "PASS-001")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if settings.Theme != "dark" {
			t.Fatalf("expected stored theme, got %+v", settings)
		}
	})
}

func TestSettingsService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a pass-code", func(t *testing.T) {
		svc := NewSettingsService(newSettingsRepoStub(), &recordingBroadcaster{}, fixedNow)

		_, err := svc.Upsert(ctx, "  ", SettingsInput{Theme: "dark"})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("creates a document and broadcasts it", func(t *testing.T) {
		broadcaster := &recordingBroadcaster{}
		svc := NewSettingsService(newSettingsRepoStub(), broadcaster, fixedNow)

		settings, err := svc.Upsert(ctx, "PASS-001", SettingsInput{Theme: "dark", NotificationsEnabled: true})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if settings.Theme != "dark" || settings.Language != "en" {
			t.Fatalf("expected defaults filled around the input, got %+v", settings)
		}
		if !settings.CreatedAt.Equal(fixedNow()) {
			t.Fatalf("expected CreatedAt stamped, got %v", settings.CreatedAt)
		}
		if len(broadcaster.settings) != 1 || broadcaster.settings[0].Theme != "dark" {
			t.Fatalf("expected one settings broadcast, got %v", broadcaster.settings)
		}
	})

	t.Run("preserves CreatedAt on replacement", func(t *testing.T) {
		repo := newSettingsRepoStub()
		svc := NewSettingsService(repo, &recordingBroadcaster{}, fixedNow)

		first, err := svc.Upsert(ctx, "PASS-001", SettingsInput{Theme: "dark", NotificationsEnabled: true})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		second, err := svc.Upsert(ctx, "PASS-001", SettingsInput{Theme: "light", NotificationsEnabled: false})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if !second.CreatedAt.Equal(first.CreatedAt) {
			t.Fatalf("expected CreatedAt preserved, got %v and %v", first.CreatedAt, second.CreatedAt)
		}
		if second.Theme != "light" || second.NotificationsEnabled {
			t.Fatalf("expected replacement applied, got %+v", second)
		}
	})
}

func TestSettingsService_Patch(t *testing.T) {
	ctx := context.Background()

	t.Run("changes only the provided fields", func(t *testing.T) {
		broadcaster := &recordingBroadcaster{}
		repo := newSettingsRepoStub()
		svc := NewSettingsService(repo, broadcaster, fixedNow)

		if _, err := svc.Upsert(ctx, "PASS-001", SettingsInput{Theme: "dark", Language: "ja", NotificationsEnabled: true}); err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		theme := "light"
		patched, err := svc.Patch(ctx, "PASS-001", SettingsPatch{Theme: &theme})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if patched.Theme != "light" {
			t.Fatalf("expected patched theme, got %+v", patched)
		}
		if patched.Language != "ja" || !patched.NotificationsEnabled {
			t.Fatalf("expected untouched fields preserved, got %+v", patched)
		}
		if len(broadcaster.settings) != 2 {
			t.Fatalf("expected a broadcast per write, got %d", len(broadcaster.settings))
		}
	})

	t.Run("patching an unknown pass-code starts from defaults", func(t *testing.T) {
		repo := newSettingsRepoStub()
		svc := NewSettingsService(repo, &recordingBroadcaster{}, fixedNow)

		enabled := false
		patched, err := svc.Patch(ctx, "PASS-002", SettingsPatch{NotificationsEnabled: &enabled})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if patched.Theme != "light" || patched.NotificationsEnabled {
			t.Fatalf("expected defaults with the patch applied, got %+v", patched)
		}
		if _, ok := repo.settings["PASS-002"]; !ok {
			t.Fatalf("expected document persisted")
		}
	})
}
