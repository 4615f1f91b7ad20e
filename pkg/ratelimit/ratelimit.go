package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Limiter is a simple token bucket keyed by client IP
type Limiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket // per-IP buckets
	max       int                // tokens per window
	per       time.Duration      // window size
	lastSweep time.Time          // last expired-bucket cleanup
}

type bucket struct {
	ts     time.Time // window start
	tokens int       // remaining tokens
}

// New creates a new IP-based limiter allowing max requests per window
func New(max int, per time.Duration) *Limiter {
	return &Limiter{
		buckets:   map[string]*bucket{},
		max:       max,
		per:       per,
		lastSweep: time.Now(),
	}
}

// Allow consumes one token for key, reporting whether the request may
// proceed. Expired windows restart with a full bucket. At most once per
// window, expired buckets of other keys are swept too, so the limiter
// needs no background goroutine to bound its memory.
func (r *Limiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if time.Since(r.lastSweep) > r.per {
		r.sweepLocked()
		r.lastSweep = time.Now()
	}

	b := r.buckets[key]
	if b == nil || time.Since(b.ts) > r.per {
		// Start a new window
		b = &bucket{ts: time.Now(), tokens: r.max}
		r.buckets[key] = b
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Sweep drops buckets whose window expired, bounding memory when many
// distinct clients come and go. Returns the number removed.
func (r *Limiter) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

func (r *Limiter) sweepLocked() int {
	removed := 0
	for key, b := range r.buckets {
		if time.Since(b.ts) > r.per {
			delete(r.buckets, key)
			removed++
		}
	}
	return removed
}

// Middleware enforces the rate limit before calling the next handler
func (r *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			ip = req.RemoteAddr
		}

		if !r.Allow(ip) {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, req)
	})
}
