package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter throttles requests per client using a Redis counter with a
// fixed one-minute window.
type RateLimiter struct {
	client *redis.Client
	limit  int64
}

// NewRateLimiter creates a Redis-backed rate limiter.
func NewRateLimiter(addr string, perMinute int64) *RateLimiter {
	return &RateLimiter{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		limit:  perMinute,
	}
}

// NewRateLimiterWithClient creates a rate limiter around an existing client
// (for testing).
func NewRateLimiterWithClient(client *redis.Client, perMinute int64) *RateLimiter {
	return &RateLimiter{client: client, limit: perMinute}
}

// Allow increments the counter for key and sets the window TTL on first use.
// Returns whether the request is within the limit and the current count.
func (rl *RateLimiter) Allow(c *gin.Context, key string, window time.Duration) (bool, int64, error) {
	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(c.Request.Context(), key)
	pipe.Expire(c.Request.Context(), key, window)
	if _, err := pipe.Exec(c.Request.Context()); err != nil {
		return false, 0, fmt.Errorf("redis ratelimit: %w", err)
	}
	n := incr.Val()
	return n <= rl.limit, n, nil
}

// Middleware returns Gin middleware enforcing the per-client limit. Requests
// are keyed by the authenticated user when present, falling back to client IP.
// Redis failures log and let the request through rather than blocking traffic.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := c.ClientIP()
		if userID, err := GetUserID(c); err == nil {
			clientKey = userID.String()
		}
		key := "ratelimit:" + clientKey

		allowed, count, err := rl.Allow(c, key, time.Minute)
		if err != nil {
			log.Printf("rateLimiter.Middleware: %v", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":         "Too Many Requests",
				"reason":        fmt.Sprintf("rate limit exceeded: %d requests this minute", count),
				"module":        "ratelimit",
				"safe_for_demo": true,
			})
			return
		}
		c.Next()
	}
}
