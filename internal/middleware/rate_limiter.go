package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

// RateLimiterConfig defines rate limiting rules
type RateLimiterConfig struct {
	MaxRequests int           // Maximum requests allowed in the window
	Window      time.Duration // Time window (e.g., 1 minute)
	BlockTime   time.Duration // How long to block after exceeding limit
	KeyPrefix   string        // Redis key namespace, e.g. "auth"
}

// RateLimiter provides IP-based rate limiting using Redis. It guards the
// unauthenticated signup and token endpoints against code flooding and
// brute force.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimiterConfig
}

func NewRateLimiter(redisClient *redis.Client, config RateLimiterConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "default"
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, retryAfter, err := rl.CheckLimit(c.Request.Context(), clientIP)
		if err != nil {
			// Fail open: Redis trouble must not take the API down.
			logger.Log.Error("Rate limiter unavailable",
				zap.String("ip", clientIP),
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !allowed {
			seconds := int(retryAfter.Round(time.Second).Seconds())
			logger.Log.Warn("Rate limit exceeded",
				zap.String("ip", clientIP),
				zap.String("path", c.Request.URL.Path),
				zap.Int("retry_after", seconds),
			)
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too many requests, please try again later",
				"retry_after": seconds,
			})
			return
		}

		c.Next()
	}
}

// CheckLimit counts a request from ip in a fixed window (INCR + EXPIRE).
// Exceeding the window limit blocks the ip for BlockTime.
// Returns: (allowed bool, retryAfter duration, error)
func (rl *RateLimiter) CheckLimit(ctx context.Context, ip string) (bool, time.Duration, error) {
	blockKey := fmt.Sprintf("yamdb:ratelimit:%s:block:%s", rl.config.KeyPrefix, ip)
	counterKey := fmt.Sprintf("yamdb:ratelimit:%s:count:%s", rl.config.KeyPrefix, ip)

	ttl, err := rl.redis.TTL(ctx, blockKey).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl > 0 {
		return false, ttl, nil
	}

	count, err := rl.redis.Incr(ctx, counterKey).Result()
	if err != nil {
		return false, 0, err
	}

	// Set expiry on first request (count = 1)
	if count == 1 {
		if err := rl.redis.Expire(ctx, counterKey, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count > int64(rl.config.MaxRequests) {
		block := rl.config.BlockTime
		if block <= 0 {
			block = rl.config.Window
		}
		if err := rl.redis.Set(ctx, blockKey, 1, block).Err(); err != nil {
			return false, 0, err
		}
		return false, block, nil
	}

	return true, 0, nil
}

// Reset clears the counter and any block for ip.
func (rl *RateLimiter) Reset(ctx context.Context, ip string) error {
	return rl.redis.Del(ctx,
		fmt.Sprintf("yamdb:ratelimit:%s:block:%s", rl.config.KeyPrefix, ip),
		fmt.Sprintf("yamdb:ratelimit:%s:count:%s", rl.config.KeyPrefix, ip),
	).Err()
}
