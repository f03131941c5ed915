package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		path       string
		want       string
	}{
		{"socket address", "192.168.1.5:54321", "", "/api/history", "192.168.1.5:/api/history"},
		{"forwarded single", "10.0.0.1:80", "203.0.113.9", "/api/responses/generate", "203.0.113.9:/api/responses/generate"},
		{"forwarded chain uses first", "10.0.0.1:80", "203.0.113.9, 10.0.0.2", "/api/clients", "203.0.113.9:/api/clients"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.path, nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIdentifier(r); got != tt.want {
				t.Errorf("ClientIdentifier: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddleware_SetsHeadersAndRejects(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(clock)
	limiter := NewLimiter(store)
	preset := Preset{Window: time.Minute, MaxRequests: 2}

	calls := 0
	handler := limiter.Middleware(preset, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	do := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
		r.RemoteAddr = "192.168.1.5:54321"
		w := httptest.NewRecorder()
		handler(w, r)
		return w
	}

	first := do()
	if first.Code != http.StatusOK {
		t.Fatalf("First request: got status %d", first.Code)
	}
	if got := first.Header().Get("X-RateLimit-Limit"); got != "2" {
		t.Errorf("X-RateLimit-Limit: got %q, want \"2\"", got)
	}
	if got := first.Header().Get("X-RateLimit-Remaining"); got != "1" {
		t.Errorf("X-RateLimit-Remaining: got %q, want \"1\"", got)
	}

	do()
	third := do()
	if third.Code != http.StatusTooManyRequests {
		t.Fatalf("Third request: got status %d, want 429", third.Code)
	}
	if calls != 2 {
		t.Errorf("Handler called %d times, want 2", calls)
	}

	var body limitExceededResponse
	if err := json.Unmarshal(third.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal 429 body: %v", err)
	}
	if body.Error != "rate_limit_exceeded" {
		t.Errorf("Error field: got %q", body.Error)
	}
	if body.RetryAfter <= 0 {
		t.Errorf("RetryAfter should be positive, got %d", body.RetryAfter)
	}
	if third.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("X-RateLimit-Reset header missing on rejection")
	}
}
