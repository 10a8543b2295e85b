// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/noah-isme/zelle-bridge/internal/common"
)

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady flips the readiness flag. The server clears it when shutdown starts
// so load balancers drain traffic before connections close.
func SetReady(v bool) { ready.Store(v) }

// Pinger is satisfied by *pgxpool.Pool and by the redis adapter below.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping implements Pinger.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler exposes HTTP handlers for health endpoints. A nil Redis pinger is
// reported as "disabled" and does not affect readiness.
type Handler struct {
	DB           Pinger
	Redis        Pinger
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := map[string]string{
		"db":    probe(ctx, h.DB, durationOr(h.DBTimeout, 500*time.Millisecond), "unavailable"),
		"redis": probe(ctx, h.Redis, durationOr(h.RedisTimeout, 300*time.Millisecond), "disabled"),
	}
	if !ready.Load() {
		status["server"] = "shutting_down"
	}

	code := http.StatusOK
	if status["db"] != "ok" || (status["redis"] != "ok" && status["redis"] != "disabled") || !ready.Load() {
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, status)
}

func probe(ctx context.Context, p Pinger, timeout time.Duration, missing string) string {
	if p == nil {
		return missing
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}

func durationOr(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
