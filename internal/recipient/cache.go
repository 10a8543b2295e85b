package recipient

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/zelle-bridge/internal/obs"
)

// CachedStore is a Redis read-through cache in front of another Store. Cache
// failures are logged and fall through to the backing store.
type CachedStore struct {
	Next   Store
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func (c CachedStore) key(merchantID string) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "zelle:recipient:"
	}
	return prefix + normaliseMerchant(merchantID)
}

// Get implements Reader.
func (c CachedStore) Get(ctx context.Context, merchantID string) (Recipient, error) {
	if c.Client == nil || c.TTL <= 0 {
		return c.Next.Get(ctx, merchantID)
	}
	key := c.key(merchantID)
	data, err := c.Client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var rec Recipient
		if jsonErr := json.Unmarshal(data, &rec); jsonErr == nil {
			countCache("hit")
			return rec, nil
		}
		countCache("error")
	case errors.Is(err, redis.Nil):
		countCache("miss")
	default:
		countCache("error")
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("recipient cache read")
	}

	rec, err := c.Next.Get(ctx, merchantID)
	if err != nil {
		return Recipient{}, err
	}
	c.store(ctx, key, rec)
	return rec, nil
}

// Put writes through to the backing store and refreshes the cached entry.
func (c CachedStore) Put(ctx context.Context, merchantID, name, email string) (Recipient, error) {
	rec, err := c.Next.Put(ctx, merchantID, name, email)
	if err != nil {
		return Recipient{}, err
	}
	if c.Client != nil && c.TTL > 0 {
		c.store(ctx, c.key(merchantID), rec)
	}
	return rec, nil
}

const storeAttempts = 3

// store writes rec unless the cached entry is newer. A read-through fill that
// loaded a row before a concurrent Put therefore never replaces the Put's value.
func (c CachedStore) store(ctx context.Context, key string, rec Recipient) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	write := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cached Recipient
			if json.Unmarshal(current, &cached) == nil && cached.UpdatedAt.After(rec.UpdatedAt) {
				return nil
			}
		case !errors.Is(err, redis.Nil):
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.TTL)
			return nil
		})
		return err
	}
	for attempt := 0; attempt < storeAttempts; attempt++ {
		err = c.Client.Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			// Give up on a contended key so no stale value outlives the TTL.
			_ = c.Client.Del(ctx, key).Err()
		}
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("recipient cache write")
	}
}

func countCache(result string) {
	if obs.RecipientCacheTotal != nil {
		obs.RecipientCacheTotal.WithLabelValues(result).Inc()
	}
}
