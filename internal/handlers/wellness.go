package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mindwell/mindwell-api/internal/services/wellness"
)

// WellnessHandler serves the static self-care catalog and crisis resources
type WellnessHandler struct{}

// NewWellnessHandler creates a new wellness handler
func NewWellnessHandler() *WellnessHandler {
	return &WellnessHandler{}
}

// RegisterRoutes registers wellness routes
func (h *WellnessHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/wellness/activities", h.GetActivities).Methods("GET")
	r.HandleFunc("/wellness/categories", h.GetCategories).Methods("GET")
	r.HandleFunc("/wellness/crisis-resources", h.GetCrisisResources).Methods("GET")
}

// GetActivities recommends activities. Category takes priority over mood;
// with neither, a general mix is returned.
func (h *WellnessHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	mood := r.URL.Query().Get("mood")
	count := parseIntQuery(r, "count", 3)

	if category != "" {
		if _, ok := wellness.Catalog[category]; !ok {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Unknown category: "+category)
			return
		}
	}

	activities := wellness.Recommend(category, mood, count)

	respondJSON(w, http.StatusOK, map[string]any{
		"category":   category,
		"mood":       mood,
		"activities": activities,
		"count":      len(activities),
	})
}

// GetCategories lists catalog categories with their activity counts.
func (h *WellnessHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories := map[string]int{}
	for name, items := range wellness.Catalog {
		categories[name] = len(items)
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"categories": categories,
	})
}

// GetCrisisResources returns the crisis hotline list.
func (h *WellnessHandler) GetCrisisResources(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"resources": wellness.CrisisResources,
	})
}
