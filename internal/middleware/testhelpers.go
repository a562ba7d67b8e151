package middleware

import (
	"context"
)

// SetSubjectInContext is a helper function for testing - sets the verified
// token subject in context. This is exported so other test packages can use it
func SetSubjectInContext(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectContextKey, subject)
}
