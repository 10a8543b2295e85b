package ratelimit

import (
	"context"
	"fmt"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Memory is a per-process fixed window limiter used when Redis is not
// configured. Limits are not shared between replicas.
type Memory struct {
	store limiter.Store
}

// NewMemory returns an in-process limiter.
func NewMemory() *Memory {
	return &Memory{store: memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "zelle_ratelimit",
		CleanUpInterval: time.Minute,
	})}
}

// Allow implements Allower.
func (m *Memory) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	if max <= 0 || window <= 0 {
		return true, max, time.Now().Add(window), nil
	}
	res, err := limiter.New(m.store, limiter.Rate{Period: window, Limit: int64(max)}).Get(ctx, key)
	if err != nil {
		return false, 0, time.Now().Add(window), fmt.Errorf("rate limit %s: %w", key, err)
	}
	return !res.Reached, int(res.Remaining), time.Unix(res.Reset, 0), nil
}
