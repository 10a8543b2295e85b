package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/zelle-bridge/internal/config"
	"github.com/noah-isme/zelle-bridge/internal/health"
	"github.com/noah-isme/zelle-bridge/internal/obs"
	"github.com/noah-isme/zelle-bridge/internal/ratelimit"
	"github.com/noah-isme/zelle-bridge/internal/recipient"
	"github.com/noah-isme/zelle-bridge/internal/resilience"
	"github.com/noah-isme/zelle-bridge/internal/teller"
)

const serviceName = "zelle-bridge"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	zerolog.DefaultContextLogger = &logger

	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
		resilience.RegisterMetrics(cfg.MetricsNamespace, nil)
	}

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   serviceName,
			Endpoint:      cfg.OTLPEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	if cfg.DBAutoMigrate {
		if err := recipient.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = serviceName

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	var store recipient.Store = recipient.PostgresStore{DB: pool}
	var limiter ratelimit.Allower = ratelimit.NewMemory()
	var redisClient *redis.Client

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
		if cfg.MetricsEnabled {
			if err := redisotel.InstrumentMetrics(redisClient); err != nil {
				logger.Error().Err(err).Msg("instrument redis metrics")
			}
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("ping redis")
		}
		store = recipient.CachedStore{Next: store, Client: redisClient, TTL: cfg.RecipientCacheTTL}
		limiter = ratelimit.NewLimiter(redisClient, "zelle:ratelimit:")
	} else {
		logger.Warn().Msg("REDIS_URL not set: recipient cache and inbound idempotency disabled, rate limit is per process")
	}

	breaker := resilience.NewBreaker(cfg.BreakerMinRequests, cfg.BreakerFailureRate, cfg.BreakerOpenFor).WithTarget("teller")
	providerClient := resilience.NewHTTPClient(otelhttp.NewTransport(http.DefaultTransport), breaker, cfg.TellerHTTPTimeout)
	bridge := teller.New(store, cfg.Teller(), providerClient)
	bridge.Logger = &logger

	var httpMetrics *obs.HTTPMetrics
	if cfg.MetricsEnabled {
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, nil, nil)
	}

	healthHandler := health.Handler{DB: pool}
	if redisClient != nil {
		healthHandler.Redis = health.PingerFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	handler := newRouter(routerDeps{
		Config:      cfg,
		Logger:      logger,
		Recipients:  store,
		Bridge:      bridge,
		Redis:       redisClient,
		Limiter:     limiter,
		Health:      healthHandler,
		HTTPMetrics: httpMetrics,
		Tracing:     tracingEnabled,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-sigCtx.Done()
		health.SetReady(false)
		logger.Info().Msg("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
}
