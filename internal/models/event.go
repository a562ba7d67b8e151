package models

import (
	"time"

	"github.com/google/uuid"
)

// CalendarEvent mirrors a Google Calendar event we created for a user.
type CalendarEvent struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	RemoteID    string    `json:"remote_id"` // Google Calendar event id
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	EventType   string    `json:"event_type,omitempty"` // appointment, medication, therapy, exercise, meal
	HTMLLink    string    `json:"html_link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventReminder is one reminder override on an event.
type EventReminder struct {
	Method  string `json:"method"` // popup or email
	Minutes int    `json:"minutes"`
}
