package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mindwell/mindwell-api/internal/models"
)

// UserRepository stores per-user records as JSON blobs keyed by user id.
// Writes are last-write-wins.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Load retrieves a user record, creating a default record if none exists.
func (r *UserRepository) Load(ctx context.Context, userID string) (*models.UserRecord, error) {
	var blob string
	err := r.db.QueryRowContext(ctx,
		`SELECT record FROM users WHERE user_id = ?`, userID,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		rec := models.NewUserRecord(userID, time.Now().UTC())
		if err := r.Save(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	rec := &models.UserRecord{}
	if err := json.Unmarshal([]byte(blob), rec); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	return rec, nil
}

// Save upserts the full user record blob.
func (r *UserRepository) Save(ctx context.Context, rec *models.UserRecord) error {
	now := time.Now().UTC()
	rec.UpdatedAt = now
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	blob, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (user_id, record, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			record = excluded.record,
			updated_at = excluded.updated_at
	`, rec.UserID, string(blob), rec.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// TouchActivity stamps the user's last-activity time without rewriting history.
func (r *UserRepository) TouchActivity(ctx context.Context, userID string) error {
	rec, err := r.Load(ctx, userID)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	rec.Stats.LastActivity = &now
	return r.Save(ctx, rec)
}

// Exists reports whether a record exists for the user id.
func (r *UserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE user_id = ?`, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return n > 0, nil
}
