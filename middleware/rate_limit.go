package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weddingguard/backend/config"
	"github.com/weddingguard/backend/shell"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	rate    int           // requests per window, 0 = unlimited
	period  time.Duration // time window
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter from config
func NewRateLimiter(cfg *config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		rate:    cfg.Requests,
		period:  cfg.Window(),
		now:     time.Now,
	}
}

// Allow records one request for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(key string) bool {
	if l.rate <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.period {
		l.sweep(now)
		l.windows[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= l.rate {
		return false
	}
	w.count++
	return true
}

// sweep drops finished windows. Must be called with lock held
func (l *RateLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.period {
			delete(l.windows, key)
		}
	}
}

// LimitKey identifies the caller: the session when there is one, else the IP.
func LimitKey(c *gin.Context) string {
	if sessionID := GetSessionID(c); sessionID != "" {
		return "session:" + sessionID
	}
	return "ip:" + c.ClientIP()
}

// RateLimit middleware rejects callers over the limit with 429
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := LimitKey(c)
		if !limiter.Allow(key) {
			slog.Warn("rate limit exceeded",
				"key", key,
				"request_id", GetRequestID(c),
			)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    "rate_limited",
				"message": shell.MsgTooManyRequests,
			})
			return
		}

		c.Next()
	}
}
