package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter is a sliding window limiter backed by a Redis sorted set per key.
// It is shared across API replicas.
type Limiter struct {
	Client *redis.Client
	Prefix string
	now    func() time.Time
}

// NewLimiter returns a Redis limiter using prefix for its keys.
func NewLimiter(client *redis.Client, prefix string) *Limiter {
	return &Limiter{Client: client, Prefix: prefix, now: time.Now}
}

// Allow implements Allower.
func (l *Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	now := time.Now()
	if l.now != nil {
		now = l.now()
	}
	until := now.Add(window)
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, until, nil
	}

	redisKey := l.Prefix + key
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+cutoff)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString())})
	count := pipe.ZCard(ctx, redisKey)
	pipe.PExpire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, until, fmt.Errorf("rate limit %s: %w", key, err)
	}

	current := int(count.Val())
	remaining := max - current
	if remaining < 0 {
		remaining = 0
	}
	return current <= max, remaining, until, nil
}
