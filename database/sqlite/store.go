package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"emireminder/database/repository"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// Store wraps a sql.DB connection and exposes one repository per table.
type Store struct {
	conn *sql.DB

	Bills       *BillStore
	Reminders   *ReminderStore
	Preferences *PreferenceStore
	Users       *UserStore
}

// Open opens the database at path and runs migrations. Use ":memory:" for
// a throwaway database.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection serializes writers and keeps ":memory:" databases shared.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	s.Bills = &BillStore{db: conn}
	s.Reminders = &ReminderStore{db: conn}
	s.Preferences = &PreferenceStore{db: conn}
	s.Users = &UserStore{db: conn}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`PRAGMA foreign_keys = ON`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			fcm_token TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id TEXT PRIMARY KEY,
			push_enabled INTEGER NOT NULL DEFAULT 1,
			sms_enabled INTEGER NOT NULL DEFAULT 0,
			whatsapp_enabled INTEGER NOT NULL DEFAULT 0,
			reminder_days TEXT NOT NULL DEFAULT '7,3,0',
			language TEXT NOT NULL DEFAULT 'en',
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bills (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			amount TEXT NOT NULL,
			due_date TEXT NOT NULL,
			frequency TEXT NOT NULL,
			is_recurring INTEGER NOT NULL,
			status TEXT NOT NULL CHECK (status IN ('due', 'paid')),
			notes TEXT NOT NULL DEFAULT '',
			institution TEXT NOT NULL DEFAULT '',
			account_info TEXT NOT NULL DEFAULT '',
			version INTEGER NOT NULL DEFAULT 1,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bills_user_due ON bills (user_id, due_date)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id TEXT PRIMARY KEY,
			bill_id TEXT NOT NULL REFERENCES bills (id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			fire_at INTEGER NOT NULL,
			days_before INTEGER NOT NULL CHECK (days_before >= 0),
			message TEXT NOT NULL,
			channel TEXT NOT NULL CHECK (channel IN ('push', 'sms', 'whatsapp')),
			status TEXT NOT NULL CHECK (status IN ('pending', 'sent', 'failed')),
			sent_at INTEGER,
			delivery_key TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders (status, fire_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_bill ON reminders (bill_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders (user_id, fire_at)`,
	}

	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Repositories returns the store as a repository bundle.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Bills:       s.Bills,
		Reminders:   s.Reminders,
		Preferences: s.Preferences,
		Users:       s.Users,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// withTx runs fn inside a transaction, rolling back when it fails.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nowMillis() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
