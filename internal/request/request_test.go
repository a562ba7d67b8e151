package request

import (
	"context"
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		wantIP  string
	}{
		{"x-forwarded-for", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "", "1.2.3.4"},
		{"x-forwarded-for first", map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8 "}, "", "1.2.3.4"},
		{"x-real-ip", map[string]string{"X-Real-IP": "9.9.9.9"}, "", "9.9.9.9"},
		{"remote addr", nil, "10.0.0.1:12345", "10.0.0.1:12345"},
		{"xff over xri", map[string]string{"X-Forwarded-For": "1.2.3.4", "X-Real-IP": "9.9.9.9"}, "", "1.2.3.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}
			got := ClientIP(r)
			if got != tt.wantIP {
				t.Errorf("ClientIP() = %q, want %q", got, tt.wantIP)
			}
		})
	}
}

func TestSubjectFromContext(t *testing.T) {
	t.Parallel()
	ctx := WithSubject(context.Background(), "user-abc")
	r := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	if got := SubjectFromContext(r); got != "user-abc" {
		t.Errorf("SubjectFromContext() = %q, want user-abc", got)
	}
}

func TestSubjectFromContext_NoSubject(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest("GET", "/", nil)
	if got := SubjectFromContext(r); got != "" {
		t.Errorf("SubjectFromContext() = %q, want empty", got)
	}
}

func TestSubjectFromContext_WrongType(t *testing.T) {
	t.Parallel()
	ctx := context.WithValue(context.Background(), SubjectContextKey(), 7)
	r := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	if got := SubjectFromContext(r); got != "" {
		t.Errorf("SubjectFromContext() = %q, want empty when wrong type", got)
	}
}
