package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/talent-pass/internal/persistence"
)

// SlotRepository implements persistence.SlotRepository using SQLite.
type SlotRepository struct {
	db *DB
}

// NewSlotRepository creates a SQLite slot repository.
func NewSlotRepository(db *DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// CreateSlot inserts a new slot.
func (r *SlotRepository) CreateSlot(ctx context.Context, slot persistence.Slot) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		seq, err := r.db.nextSeq(ctx, tx)
		if err != nil {
			return fmt.Errorf("sqlite: slot sequence: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO slots (id, link_id, label, date, time, status, manager_code, candidate_code, notes, seq, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			slot.ID,
			slot.LinkID,
			slot.Label,
			slot.Date,
			slot.Time,
			string(slot.Status),
			slot.ManagerCode,
			nullString(slot.CandidateCode),
			nullString(slot.Notes),
			seq,
			formatTime(slot.CreatedAt),
			formatTime(slot.UpdatedAt),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return persistence.ErrDuplicate
			}
			return fmt.Errorf("sqlite: insert slot: %w", err)
		}
		return nil
	})
}

// UpdateSlot replaces the mutable columns of an existing slot.
func (r *SlotRepository) UpdateSlot(ctx context.Context, slot persistence.Slot) error {
	result, err := r.db.db.ExecContext(ctx, `
		UPDATE slots
		SET label = ?, date = ?, time = ?, status = ?, candidate_code = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		slot.Label,
		slot.Date,
		slot.Time,
		string(slot.Status),
		nullString(slot.CandidateCode),
		nullString(slot.Notes),
		formatTime(slot.UpdatedAt),
		slot.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update slot: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetSlot retrieves a slot by ID.
func (r *SlotRepository) GetSlot(ctx context.Context, id string) (persistence.Slot, error) {
	row := r.db.db.QueryRowContext(ctx, `
		SELECT id, link_id, label, date, time, status, manager_code, candidate_code, notes, created_at, updated_at
		FROM slots WHERE id = ?`, id)

	slot, err := scanSlot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Slot{}, persistence.ErrNotFound
		}
		return persistence.Slot{}, fmt.Errorf("sqlite: get slot: %w", err)
	}
	return slot, nil
}

// ListSlotsByLink returns all slots grouped under a link in insertion order.
func (r *SlotRepository) ListSlotsByLink(ctx context.Context, linkID string) ([]persistence.Slot, error) {
	return r.listSlots(ctx, `link_id = ?`, linkID)
}

// ListSlotsByManager returns all slots owned by a manager in insertion order.
func (r *SlotRepository) ListSlotsByManager(ctx context.Context, managerCode string) ([]persistence.Slot, error) {
	return r.listSlots(ctx, `manager_code = ?`, managerCode)
}

// ListSlotsByCandidate returns all slots occupied by a candidate in insertion order.
func (r *SlotRepository) ListSlotsByCandidate(ctx context.Context, candidateCode string) ([]persistence.Slot, error) {
	return r.listSlots(ctx, `candidate_code = ?`, candidateCode)
}

// DeleteSlot removes a slot by ID.
func (r *SlotRepository) DeleteSlot(ctx context.Context, id string) error {
	result, err := r.db.db.ExecContext(ctx, `DELETE FROM slots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete slot: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *SlotRepository) listSlots(ctx context.Context, where string, arg any) ([]persistence.Slot, error) {
	rows, err := r.db.db.QueryContext(ctx, `
		SELECT id, link_id, label, date, time, status, manager_code, candidate_code, notes, created_at, updated_at
		FROM slots WHERE `+where+` ORDER BY seq ASC`, arg)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list slots: %w", err)
	}
	defer rows.Close()

	var slots []persistence.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list slots: %w", err)
	}
	return slots, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSlot(row rowScanner) (persistence.Slot, error) {
	var (
		slot                 persistence.Slot
		status               string
		candidate, notes     sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&slot.ID,
		&slot.LinkID,
		&slot.Label,
		&slot.Date,
		&slot.Time,
		&status,
		&slot.ManagerCode,
		&candidate,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Slot{}, err
	}

	slot.Status = persistence.SlotStatus(status)
	slot.CandidateCode = stringPtr(candidate)
	slot.Notes = stringPtr(notes)
	slot.CreatedAt = parseTime(createdAt)
	slot.UpdatedAt = parseTime(updatedAt)
	return slot, nil
}
