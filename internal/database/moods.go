package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mindwell/mindwell-api/internal/models"
)

// MoodRepository handles mood entry database operations
type MoodRepository struct {
	db *DB
}

// NewMoodRepository creates a new mood repository
func NewMoodRepository(db *DB) *MoodRepository {
	return &MoodRepository{db: db}
}

// Insert records a mood entry.
func (r *MoodRepository) Insert(ctx context.Context, e *models.MoodEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO mood_entries (user_id, mood, intensity, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.UserID, e.Mood, e.Intensity, e.Notes, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert mood entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("mood entry id: %w", err)
	}
	e.ID = id
	return nil
}

// Latest returns the most recent mood entry for a user, or nil if none.
func (r *MoodRepository) Latest(ctx context.Context, userID string) (*models.MoodEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, mood, intensity, notes, created_at
		FROM mood_entries WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT 1
	`, userID)
	e := &models.MoodEntry{}
	err := row.Scan(&e.ID, &e.UserID, &e.Mood, &e.Intensity, &e.Notes, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest mood: %w", err)
	}
	return e, nil
}

// History returns mood entries for the last `days` days, newest first.
func (r *MoodRepository) History(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, mood, intensity, notes, created_at
		FROM mood_entries
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC, id DESC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("mood history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.MoodEntry
	for rows.Next() {
		e := &models.MoodEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Mood, &e.Intensity, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood history: %w", err)
	}
	return out, nil
}

// Recent returns the newest `limit` entries, newest first.
func (r *MoodRepository) Recent(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, mood, intensity, notes, created_at
		FROM mood_entries WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent moods: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.MoodEntry
	for rows.Next() {
		e := &models.MoodEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Mood, &e.Intensity, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent moods: %w", err)
	}
	return out, nil
}
