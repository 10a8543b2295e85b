package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/zelle-bridge/internal/common"
	"github.com/noah-isme/zelle-bridge/internal/config"
	"github.com/noah-isme/zelle-bridge/internal/health"
	"github.com/noah-isme/zelle-bridge/internal/obs"
	"github.com/noah-isme/zelle-bridge/internal/ratelimit"
	"github.com/noah-isme/zelle-bridge/internal/recipient"
	"github.com/noah-isme/zelle-bridge/internal/security"
	"github.com/noah-isme/zelle-bridge/internal/widget"
	"github.com/noah-isme/zelle-bridge/internal/zelle"
)

type routerDeps struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Recipients  recipient.Reader
	Bridge      zelle.Initiator
	Redis       *redis.Client
	Limiter     ratelimit.Allower
	Health      health.Handler
	HTTPMetrics *obs.HTTPMetrics
	Tracing     bool
}

func newRouter(d routerDeps) http.Handler {
	cfg := d.Config

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if d.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Remaining", "X-Request-ID"},
		MaxAge:         300,
	}))

	if d.HTTPMetrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)

	script := widget.NewHandler(5 * time.Minute)
	r.Method(http.MethodGet, widget.Path, script)
	r.Method(http.MethodHead, widget.Path, script)

	zelleHandler := &zelle.Handler{Recipients: d.Recipients, Bridge: d.Bridge}
	rateLimit := ratelimit.Handler{
		Limiter: d.Limiter,
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("zelle:"),
			Window: cfg.PaymentRateLimitWindow,
			Max:    cfg.PaymentRateLimitMax,
		},
	}
	idem := common.Idem{R: d.Redis, TTL: cfg.IdempotencyTTL, Prefix: "zelle:idem:"}

	r.Route("/api/zelle", func(z chi.Router) {
		z.Get("/", zelleHandler.Recipient)
		z.With(
			security.NoStore,
			security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware,
			rateLimit.Middleware,
			idem.Middleware,
		).Post("/", zelleHandler.Initiate)
	})

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
