package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSON(w, http.StatusCreated, map[string]string{"mood": "calm"})

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || !success {
		t.Error("success should be true")
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["mood"] != "calm" {
		t.Errorf("data = %v", body["data"])
	}
	ts, ok := body["timestamp"].(string)
	if !ok {
		t.Fatal("timestamp missing")
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", ts, err)
	}
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid input")

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if success, ok := body["success"].(bool); !ok || success {
		t.Error("success should be false")
	}
	if body["error"] != "Bad Request" || body["message"] != "Invalid input" {
		t.Errorf("error payload = %v", body)
	}
}

func TestSanitizeErrorMessage_Truncates(t *testing.T) {
	t.Parallel()

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	got := sanitizeErrorMessage(string(long))
	if len(got) != 203 {
		t.Errorf("len = %d, want 200 + ellipsis", len(got))
	}
}

func TestParseIntQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want int
	}{
		{"/x?limit=25", 25},
		{"/x", 10},
		{"/x?limit=abc", 10},
		{"/x?limit=", 10},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.url, nil)
		if got := parseIntQuery(r, "limit", 10); got != tt.want {
			t.Errorf("parseIntQuery(%q) = %d, want %d", tt.url, got, tt.want)
		}
	}
}

// newTestRequest builds a JSON request for handler tests.
func newTestRequest(method, path string, body any) *http.Request {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader(nil)
	}
	return httptest.NewRequest(method, path, bodyReader)
}

func TestSendMessage_Validation(t *testing.T) {
	t.Parallel()

	// Neither case reaches the responder, so nil is safe here.
	h := NewChatHandler(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/chat", bytes.NewReader([]byte("{not json")))
	h.SendMessage(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", w.Code)
	}

	w = httptest.NewRecorder()
	h.SendMessage(w, newTestRequest("POST", "/api/v1/chat", map[string]string{"user_id": "user-1"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing message: status = %d, want 400", w.Code)
	}
}
