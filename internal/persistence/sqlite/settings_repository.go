package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/talent-pass/internal/persistence"
)

// SettingsRepository implements persistence.SettingsRepository using SQLite.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a SQLite settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// UpsertSettings creates or replaces the settings row for a pass-code.
func (r *SettingsRepository) UpsertSettings(ctx context.Context, settings persistence.PassSettings) error {
	_, err := r.db.db.ExecContext(ctx, `
		INSERT INTO pass_settings (pass_code, theme, language, timezone, notifications_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (pass_code) DO UPDATE SET
			theme = excluded.theme,
			language = excluded.language,
			timezone = excluded.timezone,
			notifications_enabled = excluded.notifications_enabled,
			updated_at = excluded.updated_at`,
		settings.PassCode,
		settings.Theme,
		settings.Language,
		settings.Timezone,
		boolToInt(settings.NotificationsEnabled),
		formatTime(settings.CreatedAt),
		formatTime(settings.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert settings: %w", err)
	}
	return nil
}

// GetSettings retrieves the settings row for a pass-code.
func (r *SettingsRepository) GetSettings(ctx context.Context, passCode string) (persistence.PassSettings, error) {
	row := r.db.db.QueryRowContext(ctx, `
		SELECT pass_code, theme, language, timezone, notifications_enabled, created_at, updated_at
		FROM pass_settings WHERE pass_code = ?`, passCode)

	var (
		settings             persistence.PassSettings
		enabled              int
		createdAt, updatedAt string
	)
	err := row.Scan(
		&settings.PassCode,
		&settings.Theme,
		&settings.Language,
		&settings.Timezone,
		&enabled,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.PassSettings{}, persistence.ErrNotFound
		}
		return persistence.PassSettings{}, fmt.Errorf("sqlite: get settings: %w", err)
	}

	settings.NotificationsEnabled = enabled != 0
	settings.CreatedAt = parseTime(createdAt)
	settings.UpdatedAt = parseTime(updatedAt)
	return settings, nil
}
