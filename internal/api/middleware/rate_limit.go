package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qr-attendance/backend/pkg/redis"
	"qr-attendance/backend/pkg/response"
)

// RateLimit allows at most limit requests per client IP and route within
// window. Redis holds the sliding window; when rdb is nil or Redis fails
// the per-process token bucket decides instead. limit <= 0 disables it.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	local := NewTokenBucket(limit, window)

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())

		allowed := true
		if rdb != nil {
			ok, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
			if err != nil {
				logger.Warn("redis rate limit unavailable, using local limiter", zap.Error(err))
				allowed = local.Allow(key)
			} else {
				allowed = ok
			}
		} else {
			allowed = local.Allow(key)
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "Too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

// TokenBucket is an in-memory per-key limiter refilling capacity tokens
// every window.
type TokenBucket struct {
	capacity int
	window   time.Duration
	now      func() time.Time

	mu    sync.Mutex
	state map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewTokenBucket creates a limiter holding capacity tokens per window.
func NewTokenBucket(capacity int, window time.Duration) *TokenBucket {
	if window <= 0 {
		window = time.Minute
	}
	return &TokenBucket{
		capacity: capacity,
		window:   window,
		now:      time.Now,
		state:    make(map[string]*bucket),
	}
}

// Allow takes one token for key.
func (l *TokenBucket) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.state[key]
	if !ok {
		l.state[key] = &bucket{tokens: float64(l.capacity - 1), last: now}
		l.evict(now)
		return true
	}

	rate := float64(l.capacity) / l.window.Seconds()
	b.tokens += now.Sub(b.last).Seconds() * rate
	if b.tokens > float64(l.capacity) {
		b.tokens = float64(l.capacity)
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// evict drops buckets idle for more than a window; they would be full again.
func (l *TokenBucket) evict(now time.Time) {
	if len(l.state) < 1024 {
		return
	}
	for k, b := range l.state {
		if now.Sub(b.last) > l.window {
			delete(l.state, k)
		}
	}
}
