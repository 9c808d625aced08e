package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Fixed-window limits applied per IP and purpose (login, register).
const (
	defaultMaxRequests = 10
	defaultWindow      = 15 * time.Minute
)

// Limiter is a redis-backed fixed-window rate limiter keyed by IP address
// and purpose.
type Limiter struct {
	client      *redis.Client
	maxRequests int64
	window      time.Duration
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{
		client:      client,
		maxRequests: defaultMaxRequests,
		window:      defaultWindow,
	}
}

func key(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// Exceeded reports whether the IP has used up its request budget for the
// purpose within the current window.
func (l *Limiter) Exceeded(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, key(ip, purpose)).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to read rate limit counter: %w", err)
	}

	return count >= l.maxRequests, nil
}

// Record counts one request against the IP's budget. The window starts with
// the first request and is enforced by the key's TTL.
func (l *Limiter) Record(ctx context.Context, ip, purpose string) error {
	k := key(ip, purpose)

	pipe := l.client.TxPipeline()
	pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}

	return nil
}
