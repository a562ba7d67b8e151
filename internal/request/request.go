package request

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const subjectContextKey contextKey = "subject"

// SubjectContextKey returns the context key used for the token subject.
// Exposed for tests that inject non-string values.
func SubjectContextKey() contextKey { return subjectContextKey }

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithSubject returns a context with the verified token subject attached.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}

// SubjectFromContext returns the token subject from the request context, or
// "" if missing or wrong type.
func SubjectFromContext(r *http.Request) string {
	s, _ := r.Context().Value(subjectContextKey).(string)
	return s
}
