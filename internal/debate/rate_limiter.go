package debate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitConfig bounds how many generation runs one admin may start per
// window.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
}

// DefaultRateLimitConfig returns the default generation limit.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxRequests: 10,
		Window:      time.Hour,
	}
}

// RateLimiter is a fixed-window counter per admin and action.
type RateLimiter struct {
	rdb    *redis.Client
	config RateLimitConfig
}

func NewRateLimiter(rdb *redis.Client, config RateLimitConfig) *RateLimiter {
	def := DefaultRateLimitConfig()
	if config.MaxRequests <= 0 {
		config.MaxRequests = def.MaxRequests
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	return &RateLimiter{rdb: rdb, config: config}
}

// Allow records one request and reports whether it is within the limit. When
// it is not, retryAfter is the time until the window resets.
func (rl *RateLimiter) Allow(ctx context.Context, action, adminID string) (allowed bool, retryAfter time.Duration, err error) {
	if rl == nil || rl.rdb == nil {
		return false, 0, errors.New("Redis client not available")
	}

	key := fmt.Sprintf("rate:%s:%s", action, adminID)

	count, err := rl.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}

	// Set expiration if first time
	if count == 1 {
		if err := rl.rdb.Expire(ctx, key, rl.config.Window).Err(); err != nil {
			return false, 0, err
		}
	}

	if count <= int64(rl.config.MaxRequests) {
		return true, 0, nil
	}

	ttl, err := rl.rdb.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if ttl < 0 {
		// Key lost its expiry; restore it so the window can reset.
		rl.rdb.Expire(ctx, key, rl.config.Window)
		ttl = rl.config.Window
	}
	return false, ttl, nil
}
