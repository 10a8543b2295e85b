package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
}

func TestHandlerMiddlewareEnforcesLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	handler := Handler{
		Limiter: NewLimiter(client, "ratelimit:"),
		Config:  Config{Key: ByClientIP("zelle:"), Window: time.Minute, Max: 1},
	}
	counted := handler.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/zelle", nil)
	req.RemoteAddr = "203.0.113.9:5555"

	rr1 := httptest.NewRecorder()
	counted.ServeHTTP(rr1, req.Clone(req.Context()))
	require.Equal(t, http.StatusCreated, rr1.Code)

	rr2 := httptest.NewRecorder()
	counted.ServeHTTP(rr2, req.Clone(req.Context()))
	require.Equal(t, http.StatusTooManyRequests, rr2.Code)
	require.Equal(t, "1", rr2.Header().Get("X-RateLimit-Limit"))
	require.NotEmpty(t, rr2.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr2.Body.Bytes(), &body))
	require.Equal(t, "RATE_LIMITED", body["code"])
	require.True(t, mr.Exists("ratelimit:zelle:203.0.113.9"))
}

type erroringLimiter struct{}

func (erroringLimiter) Allow(context.Context, string, time.Duration, int) (bool, int, time.Time, error) {
	return false, 0, time.Time{}, errors.New("redis down")
}

func TestHandlerMiddlewareFailsOpen(t *testing.T) {
	handler := Handler{
		Limiter: erroringLimiter{},
		Config:  Config{Key: ByClientIP(""), Window: time.Second, Max: 1},
	}
	rr := httptest.NewRecorder()
	handler.Middleware(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/zelle", nil))
	require.Equal(t, http.StatusCreated, rr.Code)
}

func TestHandlerMiddlewareDisabledWithoutLimit(t *testing.T) {
	handler := Handler{Limiter: NewMemory(), Config: Config{Key: ByClientIP(""), Window: time.Second}}
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.Middleware(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/zelle", nil))
		require.Equal(t, http.StatusCreated, rr.Code)
	}
}
