// file: internal/server/middleware/ratelimit_test.go
// version: 1.1.0
// guid: 8d0f3b62-4a91-4c75-9e2d-6b8f1a4c7e30

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIPRateLimiter_Defaults(t *testing.T) {
	t.Parallel()

	limiter := NewIPRateLimiter(0, 0, 0)
	assert.Equal(t, 1, limiter.perMin)
	assert.Equal(t, 1, limiter.burst)
	assert.Equal(t, 15*time.Minute, limiter.idleTTL)
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(NewIPRateLimiter(1, 1, time.Hour).Middleware())
	router.GET("/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req1 := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req1.RemoteAddr = "192.0.2.1:1234"
	resp1 := httptest.NewRecorder()
	router.ServeHTTP(resp1, req1)
	assert.Equal(t, http.StatusOK, resp1.Code)

	req2 := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req2.RemoteAddr = "192.0.2.1:1234"
	resp2 := httptest.NewRecorder()
	router.ServeHTTP(resp2, req2)
	assert.Equal(t, http.StatusTooManyRequests, resp2.Code)
	// Rejections carry the same {error, code, status} shape as handler errors.
	assert.Contains(t, resp2.Body.String(), "rate limit exceeded")
	assert.Contains(t, resp2.Body.String(), `"code":"RATE_LIMITED"`)
	assert.Contains(t, resp2.Body.String(), `"status":429`)

	// Different IP should have its own bucket.
	req3 := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req3.RemoteAddr = "198.51.100.3:4321"
	resp3 := httptest.NewRecorder()
	router.ServeHTTP(resp3, req3)
	assert.Equal(t, http.StatusOK, resp3.Code)
}

func TestIPRateLimiter_PurgesIdleVisitors(t *testing.T) {
	t.Parallel()

	limiter := NewIPRateLimiter(60, 10, time.Millisecond)
	require.True(t, limiter.allow("192.0.2.7"))
	require.True(t, limiter.allow("192.0.2.8"))
	assert.Len(t, limiter.visitors, 2)

	// Age both visitors past the idle TTL and force the next sweep.
	limiter.mu.Lock()
	for _, v := range limiter.visitors {
		v.lastSeen = time.Now().Add(-time.Second)
	}
	limiter.lastPurge = time.Now().Add(-2 * purgeInterval)
	limiter.mu.Unlock()

	require.True(t, limiter.allow("192.0.2.9"))
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.visitors, 1)
	assert.Contains(t, limiter.visitors, "192.0.2.9")
}

func TestMaxRequestBodySize(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MaxRequestBodySize(16))
	router.POST("/upload", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/read", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	small := httptest.NewRequest(http.MethodPost, "/upload", nil)
	small.ContentLength = 8
	w := httptest.NewRecorder()
	router.ServeHTTP(w, small)
	assert.Equal(t, http.StatusOK, w.Code)

	large := httptest.NewRequest(http.MethodPost, "/upload", nil)
	large.ContentLength = 1024
	w = httptest.NewRecorder()
	router.ServeHTTP(w, large)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	// GET requests are never limited.
	get := httptest.NewRequest(http.MethodGet, "/read", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, get)
	assert.Equal(t, http.StatusOK, w.Code)
}
