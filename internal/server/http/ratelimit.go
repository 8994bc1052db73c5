package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	rateLimitEntryTTL        = 15 * time.Minute
	rateLimitCleanupInterval = 5 * time.Minute
)

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter holds one token bucket per client key. Idle buckets are
// dropped during periodic sweeps.
type rateLimiter struct {
	mu          sync.Mutex
	limit       rate.Limit
	burst       int
	entries     map[string]*rateLimitEntry
	lastCleanup time.Time
}

func newRateLimiter(perMinute, burst int) *rateLimiter {
	return &rateLimiter{
		limit:       rate.Every(time.Minute / time.Duration(perMinute)),
		burst:       burst,
		entries:     make(map[string]*rateLimitEntry),
		lastCleanup: time.Now(),
	}
}

func (r *rateLimiter) allow(key string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastCleanup) >= rateLimitCleanupInterval {
		for k, e := range r.entries {
			if now.Sub(e.lastSeen) > rateLimitEntryTTL {
				delete(r.entries, k)
			}
		}
		r.lastCleanup = now
	}

	e, ok := r.entries[key]
	if !ok {
		e = &rateLimitEntry{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.entries[key] = e
	}
	e.lastSeen = now

	return e.limiter.Allow()
}

// uploadRateLimit limits uploads per guest, or per client IP for anonymous
// requests. Non-positive settings disable the limit.
func uploadRateLimit(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 || burst <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newRateLimiter(perMinute, burst)
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if s := sessionFrom(c); s != nil {
			key = "guest:" + s.Email
		}
		if !limiter.allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many uploads, please try again later"})
			return
		}
		c.Next()
	}
}
