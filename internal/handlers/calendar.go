package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mindwell/mindwell-api/internal/services/calendar"
	"github.com/mindwell/mindwell-api/internal/validation"
)

// CalendarHandler handles wellness event scheduling requests
type CalendarHandler struct {
	service *calendar.Service
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(service *calendar.Service) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// RegisterRoutes registers calendar routes
func (h *CalendarHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/{user_id}/events", h.CreateEvent).Methods("POST")
	r.HandleFunc("/users/{user_id}/events", h.ListEvents).Methods("GET")
	r.HandleFunc("/users/{user_id}/events/schedule", h.ScheduleFromMessage).Methods("POST")
	r.HandleFunc("/users/{user_id}/events/{event_id}", h.UpdateEvent).Methods("PATCH")
	r.HandleFunc("/users/{user_id}/events/{event_id}", h.DeleteEvent).Methods("DELETE")
}

// CreateEventRequest represents a typed wellness event request
type CreateEventRequest struct {
	EventType       string `json:"event_type" validate:"required"`
	StartTime       string `json:"start_time" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"min=0,max=1440"`
	Notes           string `json:"notes" validate:"max=2000"`
}

// CreateEvent creates a typed wellness event.
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	req.Notes = validation.SanitizeText(req.Notes)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	start, err := time.Parse(time.RFC3339, calendar.CorrectTimeFormat(req.StartTime))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid start_time")
		return
	}

	event, err := h.service.CreateWellnessEvent(r.Context(), userID, req.EventType, start, req.DurationMinutes, req.Notes)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create event")
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// ListEvents lists the user's upcoming events.
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	limit := parseIntQuery(r, "limit", 10)

	events, err := h.service.Upcoming(r.Context(), userID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to list events")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"events":  events,
		"count":   len(events),
	})
}

// ScheduleMessageRequest represents a natural-language scheduling request
type ScheduleMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// ScheduleFromMessage parses a chat message into a wellness event.
func (h *CalendarHandler) ScheduleFromMessage(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req ScheduleMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	req.Message = validation.SanitizeText(req.Message)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	result, err := h.service.ScheduleFromMessage(r.Context(), userID, req.Message)
	if err != nil {
		h.respondServiceError(w, err, "Failed to schedule event")
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// UpdateEvent patches an event remotely and locally.
func (h *CalendarHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["user_id"]

	eventID, err := uuid.Parse(vars["event_id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid event_id")
		return
	}

	var req calendar.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	event, err := h.service.Update(r.Context(), userID, eventID, req)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update event")
		return
	}
	if event == nil {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Event not found")
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// DeleteEvent removes an event remotely and locally.
func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["user_id"]

	eventID, err := uuid.Parse(vars["event_id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid event_id")
		return
	}

	deleted, err := h.service.Delete(r.Context(), userID, eventID)
	if err != nil {
		h.respondServiceError(w, err, "Failed to delete event")
		return
	}
	if !deleted {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Event not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"event_id": eventID,
		"deleted":  true,
	})
}

func (h *CalendarHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, calendar.ErrDisabled) {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Calendar integration is not configured")
		return
	}
	log.Printf("Calendar request failed: %v", err)
	respondJSONError(w, http.StatusBadGateway, "Bad Gateway", fallback)
}
