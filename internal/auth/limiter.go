package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles login attempts per username and per source IP
// using redis counters. Throttling is a nuisance control, not an
// authorization decision: if redis is down the limiter admits the attempt
// and logs, so an outage cannot lock every user out.
type LoginLimiter struct {
	client      *redis.Client
	logger      *slog.Logger
	maxAttempts int64
	window      time.Duration
}

// NewLoginLimiter constructs a LoginLimiter.
func NewLoginLimiter(client *redis.Client, logger *slog.Logger, maxAttempts int64, window time.Duration) *LoginLimiter {
	return &LoginLimiter{client: client, logger: logger, maxAttempts: maxAttempts, window: window}
}

// Allow reports whether another attempt is permitted for the pair.
func (l *LoginLimiter) Allow(ctx context.Context, username, ip string) bool {
	if l == nil || l.client == nil {
		return true
	}
	if !l.allowKey(ctx, "login:user:"+strings.ToLower(username)) {
		return false
	}
	if ip == "" {
		return true
	}
	return l.allowKey(ctx, "login:ip:"+ip)
}

func (l *LoginLimiter) allowKey(ctx context.Context, key string) bool {
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("login limiter unavailable", slog.Any("error", err))
		}
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil && l.logger != nil {
			l.logger.Warn("login limiter expire", slog.Any("error", err))
		}
	}
	return count <= l.maxAttempts
}
