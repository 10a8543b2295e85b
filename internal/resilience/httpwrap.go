package resilience

import (
	"fmt"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that consults a Breaker before each
// request. Transport errors and 5xx answers count as failures, but the 5xx
// response itself is still returned so callers can inspect the body.
type Transport struct {
	Base    http.RoundTripper
	Breaker *Breaker
}

// RoundTrip implements http.RoundTripper.
func (t Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Breaker == nil {
		return base.RoundTrip(req)
	}
	ctx := req.Context()
	if !t.Breaker.Allow(ctx) {
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Host, ErrOpenCircuit)
	}
	resp, err := base.RoundTrip(req)
	t.Breaker.Report(ctx, err == nil && resp.StatusCode < http.StatusInternalServerError)
	return resp, err
}

// NewHTTPClient returns an http.Client whose transport is guarded by breaker.
// A zero timeout leaves the client without a deadline.
func NewHTTPClient(base http.RoundTripper, breaker *Breaker, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: Transport{Base: base, Breaker: breaker},
		Timeout:   timeout,
	}
}
