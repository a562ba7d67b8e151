package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mindwell/mindwell-api/internal/services/oidc"
)

type contextKey string

const subjectContextKey contextKey = "subject"

// SubjectFromContext extracts the verified token subject from the request
// context. Empty when auth is disabled.
func SubjectFromContext(r *http.Request) string {
	sub, _ := r.Context().Value(subjectContextKey).(string)
	return sub
}

// Auth validates bearer JWTs against a JWKS endpoint and binds the token
// subject to the {user_id} route variable. With an empty jwksURL the
// middleware is a no-op, which keeps local development tokenless.
func Auth(jwksManager *oidc.JWKSManager, jwksURL, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if jwksURL == "" {
			return next
		}
		verifier := oidc.NewVerifier(jwksManager, issuer)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			ctx := r.Context()
			claims, err := verifier.Verify(ctx, parts[1], jwksURL)
			if err != nil {
				log.Printf("Token verification failed: %v (issuer: %s, jwks_url: %s)", err, issuer, jwksURL)
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			// A token only grants access to its own user's data.
			if userID := mux.Vars(r)["user_id"]; userID != "" && userID != claims.Sub {
				respondError(w, http.StatusForbidden, "Token subject does not match user")
				return
			}

			ctx = context.WithValue(ctx, subjectContextKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
