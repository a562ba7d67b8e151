package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mindwell/mindwell-api/internal/models"
)

// EventRepository mirrors Google Calendar events we created locally.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create stores a new local event record.
func (r *EventRepository) Create(ctx context.Context, e *models.CalendarEvent) error {
	now := time.Now().UTC()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO calendar_events
			(id, user_id, remote_id, summary, description, location,
			 start_time, end_time, event_type, html_link, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID.String(), e.UserID, e.RemoteID, e.Summary, e.Description, e.Location,
		e.StartTime, e.EndTime, e.EventType, e.HTMLLink, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

// GetByID retrieves a local event record.
func (r *EventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, remote_id, summary, description, location,
		       start_time, end_time, event_type, html_link, created_at, updated_at
		FROM calendar_events WHERE id = ?
	`, id.String())
	return scanEvent(row)
}

// ListByUser returns local event records for a user ordered by start time.
func (r *EventRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.CalendarEvent, error) {
	if limit <= 0 || limit > 250 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, remote_id, summary, description, location,
		       start_time, end_time, event_type, html_link, created_at, updated_at
		FROM calendar_events WHERE user_id = ?
		ORDER BY start_time ASC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.CalendarEvent
	for rows.Next() {
		e, err := scanEventRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calendar events: %w", err)
	}
	return out, nil
}

// ListUpcoming returns a user's events starting at or after the given time,
// soonest first.
func (r *EventRepository) ListUpcoming(ctx context.Context, userID string, after time.Time, limit int) ([]*models.CalendarEvent, error) {
	if limit <= 0 || limit > 250 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, remote_id, summary, description, location,
		       start_time, end_time, event_type, html_link, created_at, updated_at
		FROM calendar_events WHERE user_id = ? AND start_time >= ?
		ORDER BY start_time ASC LIMIT ?
	`, userID, after, limit)
	if err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*models.CalendarEvent
	for rows.Next() {
		e, err := scanEventRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate upcoming events: %w", err)
	}
	return out, nil
}

// Update rewrites the mutable fields of a local event record.
func (r *EventRepository) Update(ctx context.Context, e *models.CalendarEvent) error {
	e.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE calendar_events
		SET summary = ?, description = ?, location = ?,
		    start_time = ?, end_time = ?, event_type = ?, updated_at = ?
		WHERE id = ?
	`, e.Summary, e.Description, e.Location,
		e.StartTime, e.EndTime, e.EventType, e.UpdatedAt, e.ID.String())
	if err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("calendar event not found")
	}
	return nil
}

// Delete removes a local event record.
func (r *EventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM calendar_events WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("calendar event not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEventInto(s rowScanner) (*models.CalendarEvent, error) {
	e := &models.CalendarEvent{}
	var id string
	err := s.Scan(&id, &e.UserID, &e.RemoteID, &e.Summary, &e.Description, &e.Location,
		&e.StartTime, &e.EndTime, &e.EventType, &e.HTMLLink, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	e.ID = parsed
	return e, nil
}

func scanEvent(row *sql.Row) (*models.CalendarEvent, error) {
	e, err := scanEventInto(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar event: %w", err)
	}
	return e, nil
}

func scanEventRows(rows *sql.Rows) (*models.CalendarEvent, error) {
	e, err := scanEventInto(rows)
	if err != nil {
		return nil, fmt.Errorf("scan calendar event: %w", err)
	}
	return e, nil
}
