package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mindwell/mindwell-api/internal/services/spotify"
)

// SpotifyHandler handles music recommendation requests
type SpotifyHandler struct {
	client *spotify.Client // nil when the integration is disabled
}

// NewSpotifyHandler creates a new spotify handler
func NewSpotifyHandler(client *spotify.Client) *SpotifyHandler {
	return &SpotifyHandler{client: client}
}

// RegisterRoutes registers music routes
func (h *SpotifyHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/music/recommendations", h.GetRecommendations).Methods("GET")
	r.HandleFunc("/music/search", h.SearchTracks).Methods("GET")
}

// GetRecommendations returns tracks tuned for a mood.
func (h *SpotifyHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Music integration is not configured")
		return
	}

	mood := r.URL.Query().Get("mood")
	limit := parseIntQuery(r, "limit", 6)

	tracks, err := h.client.RecommendForMood(r.Context(), mood, limit)
	if err != nil {
		log.Printf("Spotify recommendations failed: %v", err)
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to fetch recommendations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"mood":   mood,
		"tracks": tracks,
		"count":  len(tracks),
	})
}

// SearchTracks runs a plain track search.
func (h *SpotifyHandler) SearchTracks(w http.ResponseWriter, r *http.Request) {
	if h.client == nil {
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Music integration is not configured")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Query parameter 'q' is required")
		return
	}
	limit := parseIntQuery(r, "limit", 8)

	tracks, err := h.client.SearchTracks(r.Context(), query, limit)
	if err != nil {
		log.Printf("Spotify search failed: %v", err)
		respondJSONError(w, http.StatusBadGateway, "Bad Gateway", "Failed to search tracks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"query":  query,
		"tracks": tracks,
		"count":  len(tracks),
	})
}
