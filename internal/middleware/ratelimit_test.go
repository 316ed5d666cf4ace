package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RPS: 0.001, Burst: 2})(okHandler())

	send := func(remote string) int {
		req := httptest.NewRequest("GET", "/tracking/AWB1", nil)
		req.RemoteAddr = remote
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1:5000"); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, code)
		}
	}
	if code := send("10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Errorf("third request: status = %d, want 429", code)
	}

	// A different client has its own bucket.
	if code := send("10.0.0.2:5000"); code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", code)
	}
}

func TestRateLimitResponse(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RPS: 0.001, Burst: 1})(okHandler())

	req := httptest.NewRequest("GET", "/orders/1/status", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Status = %d, want 429", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", body.Error.Code)
	}
}

func TestRateLimitHealthExempt(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RPS: 0.001, Burst: 1})(okHandler())

	for _, path := range []string{"/health", "/healthz"} {
		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("%s request %d: status = %d, want 200", path, i, w.Code)
			}
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(RateLimitConfig{})(okHandler())

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/tracking/X", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		remote string
		want   string
	}{
		{"remote addr", "", "192.0.2.1:1234", "192.0.2.1"},
		{"forwarded first hop", "203.0.113.5, 10.0.0.1", "10.0.0.1:80", "203.0.113.5"},
		{"forwarded single", " 203.0.113.9 ", "10.0.0.1:80", "203.0.113.9"},
		{"remote without port", "", "192.0.2.7", "192.0.2.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLimiterSetSweepsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	set := &limiterSet{
		clients:   make(map[string]*clientLimiter),
		limit:     1,
		burst:     1,
		lastSweep: now,
		now:       func() time.Time { return now },
	}

	set.get("a")
	now = now.Add(limiterIdleTTL + time.Minute)
	set.get("b")

	if _, ok := set.clients["a"]; ok {
		t.Error("idle client was not swept")
	}
	if _, ok := set.clients["b"]; !ok {
		t.Error("active client missing")
	}
}
