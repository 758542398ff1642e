package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pablozamit/elo-pool/pkg/logger"
	"github.com/pablozamit/elo-pool/pkg/ratelimit"
)

// KeyFunc extracts the rate limit bucket key from the request.
type KeyFunc func(c *gin.Context) string

// IPKeyFunc buckets requests by client IP.
func IPKeyFunc(prefix string) KeyFunc {
	return func(c *gin.Context) string {
		return fmt.Sprintf("%s:%s", prefix, c.ClientIP())
	}
}

// PlayerKeyFunc buckets requests by the authenticated player, falling
// back to the client IP for anonymous requests. Must run after Auth.
func PlayerKeyFunc(prefix string) KeyFunc {
	return func(c *gin.Context) string {
		if playerID, exists := c.Get("playerID"); exists {
			return fmt.Sprintf("%s:player:%v", prefix, playerID)
		}
		return fmt.Sprintf("%s:ip:%s", prefix, c.ClientIP())
	}
}

// RateLimit enforces an in-memory token bucket per key.
func RateLimit(limiter *ratelimit.RateLimiter, keyFunc KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if !limiter.Allow(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedisRateLimit enforces a token bucket shared across instances.
// Fails open when Redis is unreachable.
func RedisRateLimit(limiter *ratelimit.RedisRateLimiter, keyFunc KeyFunc, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		allowed, info, err := limiter.AllowWithInfo(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("rate limit check failed, allowing request", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

		if !allowed {
			retryAfter := int64(time.Until(info.ResetTime).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRateLimiter throttles login and register attempts per IP.
func AuthRateLimiter() *ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(10, 1)
}

// SubmitRateLimiter throttles match submissions per player.
func SubmitRateLimiter() *ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(30, 1)
}
