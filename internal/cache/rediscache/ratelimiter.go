package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RateLimiter — счётчик с фиксированным окном (INCR + EXPIRE).
type RateLimiter struct {
	c      *redis.Client
	prefix string
	now    func() time.Time
}

func NewRateLimiter(c *redis.Client, prefix string) *RateLimiter {
	return &RateLimiter{c: c, prefix: prefix, now: time.Now}
}

// Allow увеличивает счётчик subject в текущем окне.
// Возвращает (allowed, currentCount).
func (rl *RateLimiter) Allow(ctx context.Context, subject string, limit int64, window time.Duration) (bool, int64, error) {
	if window <= 0 {
		window = time.Minute
	}
	key := rl.windowKey(subject, window)

	pipe := rl.c.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, errors.Wrap(err, "redis ratelimit")
	}
	n := incr.Val()
	return n <= limit, n, nil
}

func (rl *RateLimiter) windowKey(subject string, window time.Duration) string {
	start := rl.now().UTC().Truncate(window)
	return fmt.Sprintf("%s:%s:%s", rl.prefix, subject, start.Format("200601021504"))
}
