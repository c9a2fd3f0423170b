// Package ratelimit paces outbound HTTP requests so the scraper stays
// well under the hosts' tolerance for unauthenticated clients.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter defines the interface for request pacing
type Limiter interface {
	// Allow reports whether a request may proceed right now
	Allow() bool
	// Wait blocks until a request is allowed or the context is done
	Wait(ctx context.Context) error
	// Reset restores the limiter to its initial full allowance
	Reset()
}

// RequestLimiter paces requests at a steady per-minute rate. A small
// burst equal to one second's allowance smooths out the start of a run
// without front-loading a visible spike of traffic.
type RequestLimiter struct {
	limiter   *rate.Limiter
	perMinute int
}

// PerMinute creates a limiter allowing the given number of requests per
// minute. Zero or negative disables pacing entirely.
func PerMinute(requests int) *RequestLimiter {
	if requests <= 0 {
		return &RequestLimiter{limiter: rate.NewLimiter(rate.Inf, 1), perMinute: requests}
	}

	burst := requests / 60
	if burst < 1 {
		burst = 1
	}

	return &RequestLimiter{
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(requests)), burst),
		perMinute: requests,
	}
}

// Allow reports whether a request may proceed without waiting
func (l *RequestLimiter) Allow() bool {
	return l.limiter.Allow()
}

// Wait blocks until the next request slot opens up
func (l *RequestLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Reset discards accumulated pacing state
func (l *RequestLimiter) Reset() {
	fresh := PerMinute(l.perMinute)
	l.limiter = fresh.limiter
}
