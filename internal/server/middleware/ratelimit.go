// file: internal/server/middleware/ratelimit.go
// version: 1.1.0
// guid: 5e8a2c46-9f13-4d07-8b5e-3a7c1f9d6b20

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// purgeInterval bounds how often the visitor map is swept for idle clients;
// sweeping on every request would serialize all traffic through the sweep.
const purgeInterval = time.Minute

// visitor tracks a single client's token bucket.
type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP. Buckets for
// clients idle longer than idleTTL are dropped during periodic sweeps so
// the map does not grow with every IP ever seen.
type IPRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	perMin    int
	burst     int
	idleTTL   time.Duration
	lastPurge time.Time
}

// NewIPRateLimiter builds a limiter allowing requestsPerMinute sustained
// requests with the given burst per client IP. Non-positive values fall
// back to the strictest setting; a non-positive idleTTL defaults to 15
// minutes.
func NewIPRateLimiter(requestsPerMinute, burst int, idleTTL time.Duration) *IPRateLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	if idleTTL <= 0 {
		idleTTL = 15 * time.Minute
	}
	return &IPRateLimiter{
		visitors:  make(map[string]*visitor),
		perMin:    requestsPerMinute,
		burst:     burst,
		idleTTL:   idleTTL,
		lastPurge: time.Now(),
	}
}

// allow reports whether the client identified by ip may proceed.
func (l *IPRateLimiter) allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	if now.Sub(l.lastPurge) >= purgeInterval {
		l.purgeIdle(now)
		l.lastPurge = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{
			bucket: rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.burst),
		}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	bucket := v.bucket
	l.mu.Unlock()

	return bucket.Allow()
}

// purgeIdle drops visitors idle past idleTTL. Caller holds the lock.
func (l *IPRateLimiter) purgeIdle(now time.Time) {
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, ip)
		}
	}
}

// Middleware returns a Gin middleware that enforces the configured limit.
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.allow(ip) {
			abortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", "RATE_LIMITED")
			return
		}
		c.Next()
	}
}
