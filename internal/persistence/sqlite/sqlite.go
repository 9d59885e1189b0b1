package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite connection shared by the repositories in this package.
type DB struct {
	db *sql.DB
}

// Open establishes a SQLite connection for the given DSN.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}

	// modernc.org/sqlite allows one writer at a time; concurrent connections
	// surface as SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return &DB{db: db}, nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Ping verifies the connection is usable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate applies the schema. Statements are idempotent so Migrate can run on
// every startup.
func (d *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS slots (
			id TEXT PRIMARY KEY,
			link_id TEXT NOT NULL,
			label TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			status TEXT NOT NULL,
			manager_code TEXT NOT NULL,
			candidate_code TEXT,
			notes TEXT,
			seq INTEGER,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_link ON slots (link_id)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_manager ON slots (manager_code)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			pass_code TEXT NOT NULL,
			type TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			priority TEXT NOT NULL,
			read INTEGER NOT NULL DEFAULT 0,
			delivered INTEGER NOT NULL DEFAULT 0,
			scheduled_for TEXT,
			seq INTEGER,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_code ON notifications (pass_code)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_pending ON notifications (delivered, scheduled_for)`,
		`CREATE TABLE IF NOT EXISTS pass_settings (
			pass_code TEXT PRIMARY KEY,
			theme TEXT NOT NULL,
			language TEXT NOT NULL,
			timezone TEXT NOT NULL,
			notifications_enabled INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admin_actions (
			id TEXT PRIMARY KEY,
			action_type TEXT NOT NULL,
			target_codes TEXT NOT NULL,
			performed_by TEXT NOT NULL,
			result TEXT,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sequence (value INTEGER NOT NULL)`,
		`INSERT INTO sequence (value) SELECT 0 WHERE NOT EXISTS (SELECT 1 FROM sequence)`,
	}

	for _, statement := range statements {
		if _, err := d.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

// nextSeq reserves the next value of the monotonic insertion sequence used to
// keep list queries in stable insertion order.
func (d *DB) nextSeq(ctx context.Context, tx *sql.Tx) (int64, error) {
	if _, err := tx.ExecContext(ctx, `UPDATE sequence SET value = value + 1`); err != nil {
		return 0, err
	}
	var value int64
	if err := tx.QueryRowContext(ctx, `SELECT value FROM sequence`).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// formatTime renders instants at second precision so that lexicographic
// comparison on TEXT columns matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	clone := value.String
	return &clone
}

func nullTime(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*value), Valid: true}
}

func timePtr(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	ts := parseTime(value.String)
	return &ts
}
