package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFixedWindowLimit(t *testing.T) {
	store := NewRateLimiterStore(3)
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	assert.True(t, store.Allow("k"))
	assert.True(t, store.Allow("k"))
	assert.True(t, store.Allow("k"))
	assert.False(t, store.Allow("k"), "call 4 within the window must be rejected")
	assert.False(t, store.Allow("k"), "rejections must not consume the next window")

	// Window rolls over.
	now = now.Add(61 * time.Second)
	assert.True(t, store.Allow("k"))
}

func TestLimitDisabled(t *testing.T) {
	store := NewRateLimiterStore(0)
	for i := 0; i < 100; i++ {
		assert.True(t, store.Allow("k"))
	}
}

func TestKeysAreIndependent(t *testing.T) {
	store := NewRateLimiterStore(1)

	assert.True(t, store.Allow("a"))
	assert.False(t, store.Allow("a"))
	assert.True(t, store.Allow("b"))
}

func TestRateLimitMiddlewareRejects(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(NewRateLimiterStore(1)))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}
