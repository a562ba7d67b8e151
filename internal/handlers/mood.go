package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mindwell/mindwell-api/internal/services/mood"
	"github.com/mindwell/mindwell-api/internal/validation"
)

// MoodHandler handles mood logging and analytics requests
type MoodHandler struct {
	tracker *mood.Tracker
}

// NewMoodHandler creates a new mood handler
func NewMoodHandler(tracker *mood.Tracker) *MoodHandler {
	return &MoodHandler{tracker: tracker}
}

// RegisterRoutes registers mood routes
func (h *MoodHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/{user_id}/moods", h.LogMood).Methods("POST")
	r.HandleFunc("/users/{user_id}/moods", h.GetHistory).Methods("GET")
	r.HandleFunc("/users/{user_id}/moods/transitions", h.GetTransitions).Methods("GET")
	r.HandleFunc("/users/{user_id}/moods/insights", h.GetInsights).Methods("GET")
	r.HandleFunc("/users/{user_id}/mood-bar", h.GetMoodBar).Methods("GET")
}

// LogMoodRequest represents an explicit mood log request
type LogMoodRequest struct {
	Mood      string `json:"mood" validate:"required,mood"`
	Intensity int    `json:"intensity" validate:"required,min=1,max=10"`
	Notes     string `json:"notes" validate:"max=2000"`
}

// LogMood stores a user-submitted mood entry.
func (h *MoodHandler) LogMood(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req LogMoodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	req.Notes = validation.SanitizeText(req.Notes)
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	entry, err := h.tracker.Log(r.Context(), userID, req.Mood, req.Intensity, req.Notes)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// GetHistory returns mood entries for the requested window (default 30 days).
func (h *MoodHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	days := parseIntQuery(r, "days", 30)

	entries, err := h.tracker.History(r.Context(), userID, days)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load mood history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"days":    days,
		"entries": entries,
		"count":   len(entries),
	})
}

// GetTransitions returns recent mood transitions, newest first.
func (h *MoodHandler) GetTransitions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	limit := parseIntQuery(r, "limit", 50)

	transitions, err := h.tracker.Transitions(r.Context(), userID, limit)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load transitions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":     userID,
		"transitions": transitions,
		"count":       len(transitions),
	})
}

// GetInsights returns 30-day mood analytics.
func (h *MoodHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	insights, err := h.tracker.Insights(r.Context(), userID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to build insights")
		return
	}

	respondJSON(w, http.StatusOK, insights)
}

// GetMoodBar returns the compact recent-mood view used by chat UIs.
func (h *MoodHandler) GetMoodBar(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	bar, err := h.tracker.MoodBar(r.Context(), userID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to build mood bar")
		return
	}

	respondJSON(w, http.StatusOK, bar)
}
