package middleware

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mindwell/mindwell-api/internal/database"
)

// ActivityTracking stamps last-activity on the user record for every request
// that names a user. Tracking failures never fail the request.
func ActivityTracking(users database.UserRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := mux.Vars(r)["user_id"]; userID != "" {
				if err := users.TouchActivity(r.Context(), userID); err != nil {
					log.Printf("Failed to update user activity: %v", err)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
