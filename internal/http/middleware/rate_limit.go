package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/you/rentauthsvc/domain"
)

// RateLimiter is a fixed-window in-process limiter keyed by client IP and
// route. It protects the CPU-bound hashing paths on a single node; a
// multi-instance deployment should front this with a shared limiter.
type RateLimiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int
	period    time.Duration
	clock     domain.Clock
	nextSweep time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per period per key.
func NewRateLimiter(limit int, period time.Duration, clock domain.Clock) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		clock:   clock,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
// Expired windows are swept at most once per period so one-shot keys do
// not accumulate forever.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true
	}
	w.count++
	return w.count <= l.limit
}

// sweep drops every expired window. Caller holds the mutex.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(l.period)
}

// Limit returns gin middleware enforcing the limiter per client IP + path.
func (l *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP() + ":" + c.FullPath()) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
