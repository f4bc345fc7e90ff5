// Package middleware provides HTTP middleware shared across handler
// packages. Rate limiting guards the fetch trigger endpoints: every
// triggered run turns into upstream platform requests, so a burst of
// triggers amplifies directly into upstream load.
package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// RateLimiter is a per-IP sliding window limiter. The client IP comes
// from the configured IPExtractor, so the same limiter works both
// directly exposed and behind a trusted reverse proxy.
type RateLimiter struct {
	limit       int
	window      time.Duration
	ipExtractor IPExtractor

	mu       sync.Mutex
	requests map[string][]time.Time
}

// NewRateLimiter allows limit requests per IP within window.
func NewRateLimiter(limit int, window time.Duration, ipExtractor IPExtractor) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		window:      window,
		ipExtractor: ipExtractor,
		requests:    make(map[string][]time.Time),
	}
}

// Middleware rejects requests over the limit with 429. When the
// extractor fails it falls back to RemoteAddr rather than letting the
// request bypass the limiter.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, err := rl.ipExtractor.ExtractIP(r)
		if err != nil {
			slog.Warn("rate limiter: IP extraction failed, using RemoteAddr",
				slog.String("error", err.Error()),
				slog.String("remote_addr", r.RemoteAddr))
			ip, err = extractIPFromAddr(r.RemoteAddr)
			if err != nil {
				slog.Error("rate limiter: RemoteAddr extraction failed",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
		}

		if !rl.allow(ip) {
			slog.Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
				slog.Int("limit", rl.limit),
				slog.Duration("window", rl.window))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow drops timestamps that fell out of the window, then admits the
// request if the remaining count is under the limit.
func (rl *RateLimiter) allow(ip string) bool {
	now := time.Now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	live := pruneBefore(rl.requests[ip], cutoff)
	if len(live) >= rl.limit {
		rl.requests[ip] = live
		return false
	}

	rl.requests[ip] = append(live, now)
	return true
}

// CleanupExpired drops window-expired timestamps for every IP and
// removes IPs with none left. Call it periodically; without it the map
// grows with every IP ever seen.
func (rl *RateLimiter) CleanupExpired() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, timestamps := range rl.requests {
		live := pruneBefore(timestamps, cutoff)
		if len(live) == 0 {
			delete(rl.requests, ip)
		} else {
			rl.requests[ip] = live
		}
	}

	slog.Debug("rate limiter: cleanup completed",
		slog.Int("active_ips", len(rl.requests)))
}

func pruneBefore(timestamps []time.Time, cutoff time.Time) []time.Time {
	var live []time.Time
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}
	return live
}
