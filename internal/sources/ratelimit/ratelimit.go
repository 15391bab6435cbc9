// Package ratelimit gates adapter calls to a source with a token-bucket
// limiter; every adapter call passes through one.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Gate wraps a per-source rate.Limiter.
type Gate struct {
	limiter *rate.Limiter
}

// New creates a Gate allowing ratePerSecond calls/sec with the given burst.
func New(ratePerSecond float64, burst int) *Gate {
	return &Gate{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Wait blocks until a call is permitted or the context is canceled.
func (g *Gate) Wait(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}

// Allow reports whether a call may proceed right now without blocking,
// consuming a token if so.
func (g *Gate) Allow() bool {
	return g.limiter.Allow()
}
