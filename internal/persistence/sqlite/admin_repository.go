package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/talent-pass/internal/persistence"
)

// AdminActionRepository implements persistence.AdminActionRepository using SQLite.
type AdminActionRepository struct {
	db *DB
}

// NewAdminActionRepository creates a SQLite admin action repository.
func NewAdminActionRepository(db *DB) *AdminActionRepository {
	return &AdminActionRepository{db: db}
}

// CreateAdminAction appends an audit record. Target codes and the result
// payload are stored as JSON text.
func (r *AdminActionRepository) CreateAdminAction(ctx context.Context, action persistence.AdminAction) error {
	codes, err := json.Marshal(action.TargetCodes)
	if err != nil {
		return fmt.Errorf("sqlite: marshal target codes: %w", err)
	}

	var result sql.NullString
	if action.Result != nil {
		payload, err := json.Marshal(action.Result)
		if err != nil {
			return fmt.Errorf("sqlite: marshal result: %w", err)
		}
		result = sql.NullString{String: string(payload), Valid: true}
	}

	_, err = r.db.db.ExecContext(ctx, `
		INSERT INTO admin_actions (id, action_type, target_codes, performed_by, result, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		action.ID,
		action.ActionType,
		string(codes),
		action.PerformedBy,
		result,
		action.Status,
		formatTime(action.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return persistence.ErrDuplicate
		}
		return fmt.Errorf("sqlite: insert admin action: %w", err)
	}
	return nil
}

// ListAdminActions returns audit records newest first.
func (r *AdminActionRepository) ListAdminActions(ctx context.Context) ([]persistence.AdminAction, error) {
	rows, err := r.db.db.QueryContext(ctx, `
		SELECT id, action_type, target_codes, performed_by, result, status, created_at
		FROM admin_actions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list admin actions: %w", err)
	}
	defer rows.Close()

	var actions []persistence.AdminAction
	for rows.Next() {
		var (
			action    persistence.AdminAction
			codes     string
			result    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&action.ID, &action.ActionType, &codes, &action.PerformedBy, &result, &action.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan admin action: %w", err)
		}

		if err := json.Unmarshal([]byte(codes), &action.TargetCodes); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal target codes: %w", err)
		}
		if result.Valid {
			if err := json.Unmarshal([]byte(result.String), &action.Result); err != nil {
				return nil, fmt.Errorf("sqlite: unmarshal result: %w", err)
			}
		}
		action.CreatedAt = parseTime(createdAt)
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list admin actions: %w", err)
	}
	return actions, nil
}
