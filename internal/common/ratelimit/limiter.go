// internal/common/ratelimit/limiter.go

// Package ratelimit caps insight asks per caller with a Redis fixed window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	client redis.Cmdable
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewLimiter allows limit asks per caller per window. A limit of zero or a
// window shorter than one second disables limiting.
func NewLimiter(client redis.Cmdable, limit int, window time.Duration) *Limiter {
	return &Limiter{
		client: client,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.limit > 0 && l.window >= time.Second
}

func (l *Limiter) key(userID int64) string {
	bucket := l.now().Unix() / int64(l.window/time.Second)
	return fmt.Sprintf("insight:ratelimit:%d:%d", userID, bucket)
}

// Allow counts one ask for userID and reports whether it fits the window.
func (l *Limiter) Allow(ctx context.Context, userID int64) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}

	key := l.key(userID)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count <= l.limit, nil
}
