package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 3}, nil)
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("fourth request should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients are counted separately")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("a new window should reset the counter")
	}
	if rl.ActiveClients() != 2 {
		t.Errorf("ActiveClients() = %d, want 2", rl.ActiveClients())
	}
	if rl.Hits() != 1 {
		t.Errorf("Hits() = %d, want 1", rl.Hits())
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1}, nil)
	defer rl.Stop()

	handler := rl.Middleware(func(*http.Request) string { return "ip" })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodPost, http.StatusNoContent},
		{http.MethodPost, http.StatusTooManyRequests},
		{http.MethodDelete, http.StatusTooManyRequests},
		{http.MethodGet, http.StatusNoContent},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/tasks", nil))
		if w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.method, w.Code, tt.want)
		}
		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") != "60" {
			t.Errorf("missing Retry-After header")
		}
	}
}
