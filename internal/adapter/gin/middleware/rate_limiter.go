package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-crud-api/internal/adapter/ratelimit"
)

// RateLimiter returns a Gin middleware that applies the token bucket per method, route and client IP
func RateLimiter(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Enabled() {
			c.Next()
			return
		}

		// FullPath keeps /api/users/1 and /api/users/2 in one bucket
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := c.Request.Method + ":" + path + ":" + c.ClientIP()

		if !limiter.Allow(c.Request.Context(), key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": limiter.ExceededMessage(),
			})
			return
		}

		c.Next()
	}
}
