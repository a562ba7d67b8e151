package database

import (
	"context"
	"fmt"
	"time"

	"github.com/mindwell/mindwell-api/internal/models"
)

// TransitionRepository handles mood transition database operations
type TransitionRepository struct {
	db *DB
}

// NewTransitionRepository creates a new transition repository
func NewTransitionRepository(db *DB) *TransitionRepository {
	return &TransitionRepository{db: db}
}

// Insert records a mood transition.
func (r *TransitionRepository) Insert(ctx context.Context, t *models.MoodTransition) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO mood_transitions (user_id, from_mood, to_mood, created_at)
		VALUES (?, ?, ?, ?)
	`, t.UserID, t.FromMood, t.ToMood, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert mood transition: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("mood transition id: %w", err)
	}
	t.ID = id
	return nil
}

// ListByUser returns transitions for a user, newest first.
func (r *TransitionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.MoodTransition, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, from_mood, to_mood, created_at
		FROM mood_transitions WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list mood transitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.MoodTransition
	for rows.Next() {
		t := &models.MoodTransition{}
		if err := rows.Scan(&t.ID, &t.UserID, &t.FromMood, &t.ToMood, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan mood transition: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood transitions: %w", err)
	}
	return out, nil
}

// PruneOlderThan deletes transitions older than the cutoff and returns the count.
func (r *TransitionRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM mood_transitions WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune mood transitions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return n, nil
}
