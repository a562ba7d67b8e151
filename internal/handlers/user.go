package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mindwell/mindwell-api/internal/database"
	"github.com/mindwell/mindwell-api/internal/models"
	"github.com/mindwell/mindwell-api/internal/validation"
)

// UserHandler handles profile, preferences, and erasure requests
type UserHandler struct {
	db    *database.DB
	users database.UserRepositoryInterface
}

// NewUserHandler creates a new user handler
func NewUserHandler(db *database.DB, users database.UserRepositoryInterface) *UserHandler {
	return &UserHandler{db: db, users: users}
}

// RegisterRoutes registers user routes
func (h *UserHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/{user_id}/profile", h.GetProfile).Methods("GET")
	r.HandleFunc("/users/{user_id}/profile", h.UpdateProfile).Methods("PUT")
	r.HandleFunc("/users/{user_id}", h.EraseUser).Methods("DELETE")
}

// GetProfile returns the user's profile, preferences, and stats.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	rec, err := h.users.Load(r.Context(), userID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":     rec.UserID,
		"profile":     rec.Profile,
		"preferences": rec.Preferences,
		"stats":       rec.Stats,
	})
}

// UpdateProfileRequest carries partial profile and preference updates.
type UpdateProfileRequest struct {
	Profile     *models.Profile     `json:"profile,omitempty"`
	Preferences *models.Preferences `json:"preferences,omitempty"`
}

// UpdateProfile applies profile and preference updates.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if req.Profile == nil && req.Preferences == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Nothing to update")
		return
	}

	rec, err := h.users.Load(r.Context(), userID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to load user")
		return
	}

	if req.Profile != nil {
		req.Profile.Name = validation.SanitizeText(req.Profile.Name)
		rec.Profile = *req.Profile
	}
	if req.Preferences != nil {
		req.Preferences.Nickname = validation.SanitizeText(req.Preferences.Nickname)
		rec.Preferences = *req.Preferences
	}

	if err := h.users.Save(r.Context(), rec); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":     rec.UserID,
		"profile":     rec.Profile,
		"preferences": rec.Preferences,
	})
}

// EraseUser deletes every row belonging to the user across all tables.
func (h *UserHandler) EraseUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]

	if err := h.db.EraseUser(r.Context(), userID); err != nil {
		log.Printf("Erasure failed for user %s: %v", userID, err)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to erase user data")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"erased":  true,
	})
}
