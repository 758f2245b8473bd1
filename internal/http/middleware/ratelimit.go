package middleware

import (
	"net/http"
	"sync"
	"time"
)

// Buckets idle longer than this are dropped during the next sweep.
const bucketIdleTTL = 10 * time.Minute

type bucket struct {
	tokens float64
	seen   time.Time
}

// RateLimiter throttles callers with a token bucket per client IP.
// Stale buckets are swept lazily on the request path, so the limiter
// owns no background goroutine.
type RateLimiter struct {
	mu        sync.Mutex
	perIP     map[string]*bucket
	refill    float64 // tokens per second
	burst     float64
	nextSweep time.Time
}

// NewRateLimiter allows rate requests/sec with the given burst per IP.
func NewRateLimiter(rate float64, burst int) *RateLimiter {
	return &RateLimiter{
		perIP:  make(map[string]*bucket),
		refill: rate,
		burst:  float64(burst),
	}
}

// Allow reports whether a request from ip fits the budget right now.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.allowAt(ip, time.Now())
}

func (rl *RateLimiter) allowAt(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.sweep(now)

	b, ok := rl.perIP[ip]
	if !ok {
		b = &bucket{tokens: rl.burst, seen: now}
		rl.perIP[ip] = b
	}
	b.tokens += now.Sub(b.seen).Seconds() * rl.refill
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.seen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep evicts idle buckets at most once per TTL. Caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Before(rl.nextSweep) {
		return
	}
	rl.nextSweep = now.Add(bucketIdleTTL)
	cutoff := now.Add(-bucketIdleTTL)
	for ip, b := range rl.perIP {
		if b.seen.Before(cutoff) {
			delete(rl.perIP, ip)
		}
	}
}

// RateLimit rejects requests over the configured rate with a 429. The
// client IP comes from X-Real-Ip when chi's RealIP middleware ran first,
// falling back to RemoteAddr.
func RateLimit(rate float64, burst int) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(rate, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if xri := r.Header.Get("X-Real-Ip"); xri != "" {
				ip = xri
			}
			if !limiter.Allow(ip) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
