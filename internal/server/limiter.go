package server

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is the authoritative sliding-window limiter behind the
// validate endpoint. Devices run their own courtesy limiter; this one is
// the security boundary.
type RedisRateLimiter struct {
	client   *redis.Client
	window   time.Duration
	maxScans int
}

func NewRedisRateLimiter(client *redis.Client, window time.Duration, maxScans int) *RedisRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if maxScans <= 0 {
		maxScans = 10
	}
	return &RedisRateLimiter{client: client, window: window, maxScans: maxScans}
}

// Allow records an attempt for the identifier/store pair and reports
// whether it stays under the cap.
func (l *RedisRateLimiter) Allow(ctx context.Context, identifier, storeID string) (bool, error) {
	// Unit separator keeps identifiers containing ":" from aliasing
	// another pair's key.
	key := fmt.Sprintf("clockin:remote_rate:%s\x1f%s", identifier, storeID)
	now := time.Now()
	cutoff := now.Add(-l.window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", cutoff.UnixMilli()))
	count := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if count.Val() >= int64(l.maxScans) {
		return false, nil
	}

	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: now.UnixNano()})
	pipe.Expire(ctx, key, l.window)
	_, err := pipe.Exec(ctx)
	return true, err
}
