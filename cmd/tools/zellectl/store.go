package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"

	"github.com/noah-isme/zelle-bridge/internal/config"
	"github.com/noah-isme/zelle-bridge/internal/recipient"
)

// storeOpener hands commands a directory and a close func.
type storeOpener interface {
	Open(ctx context.Context) (recipient.Store, func(), error)
	Migrate(ctx context.Context) error
}

type postgresOpener struct{}

// Open connects to Postgres and, when REDIS_URL is set, wraps the store with
// the same cache the API reads through so writes refresh it immediately.
func (postgresOpener) Open(ctx context.Context) (recipient.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	var store recipient.Store = recipient.PostgresStore{DB: pool}
	if cfg.RedisURL == "" {
		return store, pool.Close, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	store = recipient.CachedStore{Next: store, Client: client, TTL: cfg.RecipientCacheTTL}
	return store, func() {
		_ = client.Close()
		pool.Close()
	}, nil
}

func (postgresOpener) Migrate(context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	return recipient.Migrate(cfg.DatabaseURL)
}
