package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"slotgate/utils"
)

const rateWindow = time.Minute

type windowCounter struct {
	windowStart time.Time
	count       int
}

// RateLimiterStore holds fixed-window call counters keyed by caller. The
// first call in a window resets the counter; a count at the limit rejects
// the call without incrementing further.
type RateLimiterStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
	limit    int
	now      func() time.Time
}

// NewRateLimiterStore creates a store enforcing limit calls per 60-second
// window per key. A limit <= 0 disables limiting.
func NewRateLimiterStore(limit int) *RateLimiterStore {
	return &RateLimiterStore{
		counters: make(map[string]*windowCounter),
		limit:    limit,
		now:      time.Now,
	}
}

// Allow records one call for key and reports whether it is within the limit.
func (s *RateLimiterStore) Allow(key string) bool {
	if s.limit <= 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	counter, ok := s.counters[key]
	if !ok || now.Sub(counter.windowStart) >= rateWindow {
		counter = &windowCounter{windowStart: now}
		s.counters[key] = counter
	}
	if counter.count >= s.limit {
		return false
	}
	counter.count++
	return true
}

// RateLimitMiddleware limits requests per credential and caller address.
func RateLimitMiddleware(store *RateLimiterStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := presentedCredential(c) + "|" + getClientIP(c)
		if !store.Allow(key) {
			utils.GetLogger().Warn("Rate limit exceeded", zap.String("key", key))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":  "error",
				"error":   string(utils.CodeRateLimited),
				"message": "Rate limit exceeded. Try again later.",
			})
			return
		}
		c.Next()
	}
}
