package ratelimiter

import (
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"task_backend/internal/platform/apperr"
)

// Middleware returns a Gin middleware that limits requests per client IP.
// A failing store lets the request through; the failure is logged.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := rl.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			slog.Error("rate limit store failed", "limiter", rl.name, "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			retryAfter := int(math.Ceil(time.Until(d.ResetAt).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			slog.Warn("rate limit exceeded", "limiter", rl.name, "remote_addr", c.ClientIP(), "path", c.FullPath())
			apperr.Abort(c, apperr.New(apperr.KindTooManyRequests, rl.message))
			return
		}
		c.Next()
	}
}
