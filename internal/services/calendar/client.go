package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/mindwell/mindwell-api/internal/models"
)

const apiBase = "https://www.googleapis.com/calendar/v3"

// remoteEvent mirrors the Google Calendar event resource fields we use.
type remoteEvent struct {
	ID           string           `json:"id,omitempty"`
	Summary      string           `json:"summary,omitempty"`
	Description  string           `json:"description,omitempty"`
	Location     string           `json:"location,omitempty"`
	Start        *remoteEventTime `json:"start,omitempty"`
	End          *remoteEventTime `json:"end,omitempty"`
	Reminders    *remoteReminders `json:"reminders,omitempty"`
	Transparency string           `json:"transparency,omitempty"`
	ColorID      string           `json:"colorId,omitempty"`
	HTMLLink     string           `json:"htmlLink,omitempty"`
	Status       string           `json:"status,omitempty"`
}

type remoteEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type remoteReminders struct {
	UseDefault bool                   `json:"useDefault"`
	Overrides  []models.EventReminder `json:"overrides,omitempty"`
}

type eventList struct {
	Items []remoteEvent `json:"items"`
}

// Client is a thin Google Calendar REST client authenticated with a static
// OAuth token.
type Client struct {
	httpClient *http.Client
	calendarID string
	logger     *zap.Logger
}

// NewClient creates a calendar client. An empty token yields a nil client,
// which callers treat as "integration disabled".
func NewClient(token, calendarID string, logger *zap.Logger) *Client {
	if token == "" {
		return nil
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 15 * time.Second
	return &Client{
		httpClient: httpClient,
		calendarID: calendarID,
		logger:     logger,
	}
}

func (c *Client) eventsURL(eventID string) string {
	u := apiBase + "/calendars/" + url.PathEscape(c.calendarID) + "/events"
	if eventID != "" {
		u += "/" + url.PathEscape(eventID)
	}
	return u
}

func (c *Client) do(ctx context.Context, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("calendar api %s %s: status %d: %s", method, rawURL, resp.StatusCode, detail)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// CreateEvent creates an event on the remote calendar and returns its id and
// HTML link.
func (c *Client) CreateEvent(ctx context.Context, req EventRequest) (string, string, error) {
	body := c.buildBody(req)
	var created remoteEvent
	if err := c.do(ctx, http.MethodPost, c.eventsURL(""), body, &created); err != nil {
		return "", "", err
	}
	if c.logger != nil {
		c.logger.Info("calendar_event_created",
			zap.String("remote_id", created.ID),
			zap.String("summary", created.Summary),
		)
	}
	return created.ID, created.HTMLLink, nil
}

// PatchEvent applies a partial update to a remote event.
func (c *Client) PatchEvent(ctx context.Context, remoteID string, req EventRequest) error {
	body := c.buildBody(req)
	return c.do(ctx, http.MethodPatch, c.eventsURL(remoteID), body, nil)
}

// DeleteEvent removes a remote event.
func (c *Client) DeleteEvent(ctx context.Context, remoteID string) error {
	return c.do(ctx, http.MethodDelete, c.eventsURL(remoteID), nil, nil)
}

// ListUpcoming returns upcoming remote events ordered by start time.
func (c *Client) ListUpcoming(ctx context.Context, maxResults int) ([]remoteEvent, error) {
	if maxResults <= 0 || maxResults > 250 {
		maxResults = 10
	}
	q := url.Values{}
	q.Set("timeMin", time.Now().UTC().Format(time.RFC3339))
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")

	var list eventList
	if err := c.do(ctx, http.MethodGet, c.eventsURL("")+"?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

// buildBody applies reminder, transparency, and time-format validation before
// shipping the event to the API.
func (c *Client) buildBody(req EventRequest) remoteEvent {
	body := remoteEvent{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
	}
	if req.StartTime != "" {
		body.Start = &remoteEventTime{DateTime: CorrectTimeFormat(req.StartTime)}
	}
	if req.EndTime != "" {
		body.End = &remoteEventTime{DateTime: CorrectTimeFormat(req.EndTime)}
	}
	if req.ColorID != "" {
		body.ColorID = req.ColorID
	}
	if t := NormalizeTransparency(req.Transparency); t != "" {
		body.Transparency = t
	} else if req.Transparency != "" && c.logger != nil {
		c.logger.Warn("calendar_transparency_skipped", zap.String("value", req.Transparency))
	}
	if len(req.Reminders) > 0 || !req.UseDefaultReminders {
		body.Reminders = &remoteReminders{
			UseDefault: req.UseDefaultReminders,
			Overrides:  ValidateReminders(req.Reminders, c.logger),
		}
	}
	return body
}

// EventRequest carries the caller-supplied event fields before validation.
type EventRequest struct {
	Summary             string                 `json:"summary"`
	Description         string                 `json:"description,omitempty"`
	Location            string                 `json:"location,omitempty"`
	StartTime           string                 `json:"start_time"`
	EndTime             string                 `json:"end_time"`
	Reminders           []models.EventReminder `json:"reminders,omitempty"`
	UseDefaultReminders bool                   `json:"use_default_reminders,omitempty"`
	Transparency        string                 `json:"transparency,omitempty"`
	ColorID             string                 `json:"color_id,omitempty"`
}
