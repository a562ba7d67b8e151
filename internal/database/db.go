package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite handle used by all repositories.
type DB struct {
	*sql.DB
}

// New opens (or creates) the SQLite database at path and applies the schema.
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// modernc sqlite is single-writer; serialize access through one connection.
	db.SetMaxOpenConns(1)

	d := &DB{DB: db}
	if err := d.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func (d *DB) migrate() error {
	schema := `
	PRAGMA journal_mode = WAL;
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS users (
		user_id    TEXT PRIMARY KEY,
		record     TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mood_entries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		mood       TEXT NOT NULL,
		intensity  INTEGER NOT NULL,
		notes      TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mood_transitions (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		from_mood  TEXT NOT NULL,
		to_mood    TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_summaries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		period_key TEXT NOT NULL,
		content    TEXT NOT NULL,
		source_n   INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		UNIQUE (user_id, period_key)
	);

	CREATE TABLE IF NOT EXISTS weekly_summaries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		period_key TEXT NOT NULL,
		content    TEXT NOT NULL,
		source_n   INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		UNIQUE (user_id, period_key)
	);

	CREATE TABLE IF NOT EXISTS monthly_summaries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id    TEXT NOT NULL,
		period_key TEXT NOT NULL,
		content    TEXT NOT NULL,
		source_n   INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		UNIQUE (user_id, period_key)
	);

	CREATE TABLE IF NOT EXISTS calendar_events (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		remote_id   TEXT NOT NULL,
		summary     TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		location    TEXT NOT NULL DEFAULT '',
		start_time  DATETIME NOT NULL,
		end_time    DATETIME NOT NULL,
		event_type  TEXT NOT NULL DEFAULT '',
		html_link   TEXT NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cors_config (
		config_key        TEXT PRIMARY KEY,
		allowed_origins   TEXT NOT NULL,
		allow_credentials INTEGER NOT NULL DEFAULT 0,
		max_age           INTEGER NOT NULL DEFAULT 0,
		created_at        DATETIME NOT NULL,
		updated_at        DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ratelimit_config (
		config_key TEXT PRIMARY KEY,
		rate       TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_mood_entries_user ON mood_entries(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_mood_transitions_user ON mood_transitions(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_calendar_events_user ON calendar_events(user_id, start_time);
	`
	_, err := d.Exec(schema)
	return err
}

// EraseUser removes every trace of a user across all tables in one transaction.
func (d *DB) EraseUser(ctx context.Context, userID string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin erase: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tables := []string{
		"users", "mood_entries", "mood_transitions",
		"daily_summaries", "weekly_summaries", "monthly_summaries",
		"calendar_events",
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("erase %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit erase: %w", err)
	}
	return nil
}
