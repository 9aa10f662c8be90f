package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/internhub/internal/app/models/dto"
)

// Limiter decides whether another request under key fits into the current window
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) bool
}

// MemoryLimiter is a fixed-window limiter for a single process
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateBucket
	now     func() time.Time
}

type rateBucket struct {
	count     int
	windowEnd time.Time
}

// NewMemoryLimiter creates an empty MemoryLimiter
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*rateBucket), now: time.Now}
}

func (r *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	bucket, ok := r.buckets[key]
	if !ok || now.After(bucket.windowEnd) {
		r.sweep(now)
		r.buckets[key] = &rateBucket{count: 1, windowEnd: now.Add(window)}
		return true
	}
	if bucket.count >= limit {
		return false
	}
	bucket.count++
	return true
}

// sweep drops expired buckets; callers hold mu
func (r *MemoryLimiter) sweep(now time.Time) {
	for key, b := range r.buckets {
		if now.After(b.windowEnd) {
			delete(r.buckets, key)
		}
	}
}

// RateLimit rejects requests with 429 once the client IP exceeds limit within window.
// A nil limiter or a non-positive limit disables the check.
func RateLimit(limiter Limiter, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 || window <= 0 {
			c.Next()
			return
		}
		key := "ratelimit:" + scope + ":" + c.ClientIP()
		if !limiter.Allow(c.Request.Context(), key, limit, window) {
			detail := dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests").
				WithDetails("Please wait before trying again")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(detail))
			return
		}
		c.Next()
	}
}
