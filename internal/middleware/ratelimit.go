package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"tinylink/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimit is the global rate-limit middleware. With a redis client the
// window is shared across replicas; without one it falls back to a
// per-process token bucket.
func RateLimit(redisClient *redis.Client, limitConfig *config.Limit) gin.HandlerFunc {
	if !limitConfig.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	if redisClient != nil {
		return redisWindowLimit(redisClient, limitConfig)
	}

	limiter := rate.NewLimiter(rate.Limit(float64(limitConfig.Requests)/60.0), int(limitConfig.Burst))
	return func(c *gin.Context) {
		if skipPath(limitConfig, c.Request.URL.Path) {
			c.Next()
			return
		}

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}

// redisWindowLimit counts requests per client IP in a one-minute fixed
// window. Redis failures let the request through: the limiter must not
// take the service down with it.
func redisWindowLimit(redisClient *redis.Client, limitConfig *config.Limit) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipPath(limitConfig, c.Request.URL.Path) {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), time.Now().Unix()/60)
		count, err := redisClient.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			redisClient.Expire(c.Request.Context(), key, time.Minute)
		}

		if count > limitConfig.Requests+limitConfig.Burst {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}

func skipPath(limitConfig *config.Limit, path string) bool {
	for _, prefix := range limitConfig.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
