package middleware

import (
	"context"
	"net/http"
	"time"
)

// DefaultRequestTimeout bounds ordinary API requests. The WebSocket chat
// route is mounted outside this middleware because it holds connections open.
const DefaultRequestTimeout = 30 * time.Second

// Timeout enforces a deadline on request handlers. The deadline also lands in
// the request context so downstream LLM and calendar calls get cancelled.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			handler := http.TimeoutHandler(next, timeout, "Request Timeout")
			handler.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
