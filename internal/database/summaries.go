package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mindwell/mindwell-api/internal/models"
)

// SummaryRepository handles the three summary tiers. Each tier lives in its
// own table with a UNIQUE (user_id, period_key) constraint; inserts are
// INSERT OR IGNORE so a cached summary is never regenerated.
type SummaryRepository struct {
	db *DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

func summaryTable(tier string) (string, error) {
	switch tier {
	case models.TierDaily:
		return "daily_summaries", nil
	case models.TierWeekly:
		return "weekly_summaries", nil
	case models.TierMonthly:
		return "monthly_summaries", nil
	}
	return "", fmt.Errorf("unknown summary tier %q", tier)
}

// Insert stores a summary unless one already exists for its period key.
// Returns true when a row was written.
func (r *SummaryRepository) Insert(ctx context.Context, s *models.Summary) (bool, error) {
	table, err := summaryTable(s.Tier)
	if err != nil {
		return false, err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO `+table+` (user_id, period_key, content, source_n, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.UserID, s.PeriodKey, s.Content, s.SourceN, s.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert %s summary: %w", s.Tier, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s summary rows affected: %w", s.Tier, err)
	}
	return n > 0, nil
}

// Exists reports whether a summary is already cached for the period key.
func (r *SummaryRepository) Exists(ctx context.Context, tier, userID, periodKey string) (bool, error) {
	table, err := summaryTable(tier)
	if err != nil {
		return false, err
	}
	var n int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM `+table+` WHERE user_id = ? AND period_key = ?`,
		userID, periodKey,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check %s summary: %w", tier, err)
	}
	return n > 0, nil
}

// Get returns the summary for a period key, or nil if none is cached.
func (r *SummaryRepository) Get(ctx context.Context, tier, userID, periodKey string) (*models.Summary, error) {
	table, err := summaryTable(tier)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, period_key, content, source_n, created_at
		FROM `+table+` WHERE user_id = ? AND period_key = ?
	`, userID, periodKey)
	s := &models.Summary{Tier: tier}
	err = row.Scan(&s.ID, &s.UserID, &s.PeriodKey, &s.Content, &s.SourceN, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s summary: %w", tier, err)
	}
	return s, nil
}

// LastN returns the newest n summaries of a tier by period key, newest first.
func (r *SummaryRepository) LastN(ctx context.Context, tier, userID string, n int) ([]*models.Summary, error) {
	table, err := summaryTable(tier)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 1
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, period_key, content, source_n, created_at
		FROM `+table+` WHERE user_id = ?
		ORDER BY period_key DESC LIMIT ?
	`, userID, n)
	if err != nil {
		return nil, fmt.Errorf("list %s summaries: %w", tier, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Summary
	for rows.Next() {
		s := &models.Summary{Tier: tier}
		if err := rows.Scan(&s.ID, &s.UserID, &s.PeriodKey, &s.Content, &s.SourceN, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s summary: %w", tier, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s summaries: %w", tier, err)
	}
	return out, nil
}

// ListAll returns every summary of a tier for a user, oldest first.
func (r *SummaryRepository) ListAll(ctx context.Context, tier, userID string) ([]*models.Summary, error) {
	table, err := summaryTable(tier)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, period_key, content, source_n, created_at
		FROM `+table+` WHERE user_id = ?
		ORDER BY period_key ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s summaries: %w", tier, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.Summary
	for rows.Next() {
		s := &models.Summary{Tier: tier}
		if err := rows.Scan(&s.ID, &s.UserID, &s.PeriodKey, &s.Content, &s.SourceN, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s summary: %w", tier, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s summaries: %w", tier, err)
	}
	return out, nil
}
