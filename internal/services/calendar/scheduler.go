package calendar

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/database"
	"github.com/mindwell/mindwell-api/internal/models"
)

// ErrDisabled is returned when no Google token is configured.
var ErrDisabled = errors.New("calendar integration disabled")

// calendarKeywords and timeKeywords drive lightweight intent detection on
// chat messages.
var calendarKeywords = []string{
	"schedule", "appointment", "meeting", "reminder", "calendar",
	"book", "plan", "set up", "arrange", "therapy", "meditation",
}

var timeKeywords = []string{
	"tomorrow", "today", "next week",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"at", "pm", "am",
}

// EventTemplate is the canned title and description for a wellness event type.
type EventTemplate struct {
	Emoji       string
	Title       string
	Description string
}

var eventTemplates = map[string]EventTemplate{
	"therapy":    {"🧠", "Therapy Session", "Mental health counseling session"},
	"meditation": {"🧘", "Meditation", "Mindfulness and relaxation practice"},
	"exercise":   {"💪", "Exercise", "Physical wellness activity"},
	"medical":    {"🏥", "Medical Appointment", "Healthcare appointment"},
	"journaling": {"📝", "Journaling", "Reflective writing time"},
	"wellness":   {"🌿", "Wellness Activity", "Self-care time"},
}

// DefaultEventMinutes is the default wellness event duration.
const DefaultEventMinutes = 30

var clockTimeRE = regexp.MustCompile(`(\d{1,2})\s*(am|pm)`)

// DetectIntent reports whether a chat message looks like a scheduling request.
func DetectIntent(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range calendarKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, kw := range timeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// ExtractEventType maps a message to one of the wellness event types,
// defaulting to "wellness".
func ExtractEventType(message string) string {
	lower := strings.ToLower(message)
	switch {
	case containsAny(lower, "therapy", "counseling", "psychologist"):
		return "therapy"
	case containsAny(lower, "meditation", "mindfulness"):
		return "meditation"
	case containsAny(lower, "exercise", "workout", "gym"):
		return "exercise"
	case containsAny(lower, "doctor", "appointment"):
		return "medical"
	case containsAny(lower, "journal", "write"):
		return "journaling"
	default:
		return "wellness"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ParseWhen extracts a start time from a natural-language message. Date words
// pick the day (tomorrow, today, next week, default tomorrow at 10am) and a
// trailing "3pm" style clock time overrides the hour.
func ParseWhen(message string, now time.Time) time.Time {
	lower := strings.ToLower(message)

	var start time.Time
	switch {
	case strings.Contains(lower, "tomorrow"):
		start = atHour(now.AddDate(0, 0, 1), 10)
	case strings.Contains(lower, "today"):
		start = now.Add(2 * time.Hour)
	case strings.Contains(lower, "next week"):
		start = atHour(now.AddDate(0, 0, 7), 10)
	default:
		start = atHour(now.AddDate(0, 0, 1), 10)
	}

	if m := clockTimeRE.FindStringSubmatch(lower); m != nil {
		hour, err := strconv.Atoi(m[1])
		if err == nil && hour >= 1 && hour <= 12 {
			if m[2] == "pm" && hour != 12 {
				hour += 12
			} else if m[2] == "am" && hour == 12 {
				hour = 0
			}
			start = time.Date(start.Year(), start.Month(), start.Day(), hour, 0, 0, 0, start.Location())
		}
	}
	return start
}

func atHour(t time.Time, hour int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

// ScheduleResult is the outcome of a natural-language scheduling request.
type ScheduleResult struct {
	Message string                `json:"message"`
	Event   *models.CalendarEvent `json:"event"`
}

// Service schedules wellness events: it mirrors every remote mutation into
// the local event store so listings work offline.
type Service struct {
	client *Client
	events database.EventRepositoryInterface
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a calendar service. A nil client keeps local CRUD
// working but rejects scheduling with ErrDisabled.
func NewService(client *Client, events database.EventRepositoryInterface, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the service clock. Used by tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Enabled reports whether the remote calendar is configured.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// CreateWellnessEvent creates a typed wellness event remotely and records it
// locally. Notes override the template description.
func (s *Service) CreateWellnessEvent(ctx context.Context, userID, eventType string, start time.Time, durationMinutes int, notes string) (*models.CalendarEvent, error) {
	if s.client == nil {
		return nil, ErrDisabled
	}

	template, ok := eventTemplates[eventType]
	if !ok {
		eventType = "wellness"
		template = eventTemplates[eventType]
	}
	if durationMinutes <= 0 {
		durationMinutes = DefaultEventMinutes
	}
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	summaryLine := template.Emoji + " " + template.Title
	description := template.Description
	if notes != "" {
		description = notes
	}

	remoteID, htmlLink, err := s.client.CreateEvent(ctx, EventRequest{
		Summary:     summaryLine,
		Description: description,
		StartTime:   start.Format(time.RFC3339),
		EndTime:     end.Format(time.RFC3339),
		Reminders:   []models.EventReminder{{Method: "popup", Minutes: 15}},
	})
	if err != nil {
		return nil, fmt.Errorf("create wellness event: %w", err)
	}

	now := s.now().UTC()
	event := &models.CalendarEvent{
		ID:          uuid.New(),
		UserID:      userID,
		RemoteID:    remoteID,
		Summary:     summaryLine,
		Description: description,
		StartTime:   start,
		EndTime:     end,
		EventType:   eventType,
		HTMLLink:    htmlLink,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("record wellness event: %w", err)
	}
	return event, nil
}

// ScheduleFromMessage parses a chat message into a typed wellness event and
// creates it.
func (s *Service) ScheduleFromMessage(ctx context.Context, userID, message string) (*ScheduleResult, error) {
	eventType := ExtractEventType(message)
	start := ParseWhen(message, s.now())

	event, err := s.CreateWellnessEvent(ctx, userID, eventType, start, DefaultEventMinutes,
		"Scheduled via chat by "+userID)
	if err != nil {
		return nil, err
	}

	return &ScheduleResult{
		Message: fmt.Sprintf("Scheduled %s for %s", event.Summary, start.Format("January 2 at 3:04 PM")),
		Event:   event,
	}, nil
}

// Upcoming lists locally recorded events starting after now, soonest first.
func (s *Service) Upcoming(ctx context.Context, userID string, limit int) ([]*models.CalendarEvent, error) {
	return s.events.ListUpcoming(ctx, userID, s.now().UTC(), limit)
}

// Update patches an event remotely (when linked) and locally. Events owned
// by other users are treated as not found.
func (s *Service) Update(ctx context.Context, userID string, eventID uuid.UUID, req EventRequest) (*models.CalendarEvent, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.UserID != userID {
		return nil, nil
	}

	if event.RemoteID != "" && s.client != nil {
		if err := s.client.PatchEvent(ctx, event.RemoteID, req); err != nil {
			return nil, fmt.Errorf("patch remote event: %w", err)
		}
	}

	if req.Summary != "" {
		event.Summary = req.Summary
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.Location != "" {
		event.Location = req.Location
	}
	if req.StartTime != "" {
		if t, err := time.Parse(time.RFC3339, CorrectTimeFormat(req.StartTime)); err == nil {
			event.StartTime = t
		}
	}
	if req.EndTime != "" {
		if t, err := time.Parse(time.RFC3339, CorrectTimeFormat(req.EndTime)); err == nil {
			event.EndTime = t
		}
	}
	event.UpdatedAt = s.now().UTC()

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// Delete removes an event remotely (when linked) and locally. Returns false
// when the event does not exist.
func (s *Service) Delete(ctx context.Context, userID string, eventID uuid.UUID) (bool, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return false, err
	}
	if event == nil || event.UserID != userID {
		return false, nil
	}

	if event.RemoteID != "" && s.client != nil {
		if err := s.client.DeleteEvent(ctx, event.RemoteID); err != nil && s.logger != nil {
			// Local delete still proceeds; the remote copy is best effort.
			s.logger.Warn("calendar_remote_delete_failed",
				zap.String("remote_id", event.RemoteID),
				zap.Error(err),
			)
		}
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		return false, err
	}
	return true, nil
}
