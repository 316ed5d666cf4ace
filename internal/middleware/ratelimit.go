package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// PER-CLIENT RATE LIMITING
// =============================================================================
//
// Status and tracking pages are public and poll-friendly, and every request
// fans out to the WordPress host. Each client IP gets its own token bucket so
// one aggressive client cannot exhaust the store's upstream budget:
//
//   request ─▶ clientIP ─▶ bucket(rps, burst) ─▶ allow ─▶ next
//                                  │
//                                  └─ empty ─▶ 429 RATE_LIMITED
//
// Buckets idle longer than limiterIdleTTL are swept on access; no background
// goroutine is needed. Health checks are never limited.
// =============================================================================

const (
	limiterIdleTTL   = 30 * time.Minute
	limiterSweepEach = 5 * time.Minute
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	RPS   float64 // Sustained requests per second per client. <= 0 disables limiting.
	Burst int     // Bucket size. Default: 1
}

type clientLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

type limiterSet struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func (s *limiterSet) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > limiterSweepEach {
		for k, c := range s.clients {
			if now.Sub(c.last) > limiterIdleTTL {
				delete(s.clients, k)
			}
		}
		s.lastSweep = now
	}

	c, ok := s.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(s.limit, s.burst)}
		s.clients[key] = c
	}
	c.last = now
	return c.limiter
}

// RateLimit returns middleware that limits each client IP to a token bucket.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RPS <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}

	set := &limiterSet{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		now:     time.Now,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			if !set.get(clientIP(r)).Allow() {
				writeRateLimited(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the first X-Forwarded-For hop, falling back to RemoteAddr.
// Cloud Run terminates TLS at the load balancer and appends the caller's address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeRateLimited writes the standard error envelope with a 429.
func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)

	resp := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	resp.Error.Code = "RATE_LIMITED"
	resp.Error.Message = "too many requests, please retry later"

	json.NewEncoder(w).Encode(resp)
}
