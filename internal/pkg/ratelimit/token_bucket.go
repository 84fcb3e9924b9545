// Package ratelimit throttles outbound broker requests.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket grants up to capacity tokens immediately and refills at
// refillRate tokens per second. Safe for concurrent use.
type TokenBucket struct {
	capacity int
	limiter  *rate.Limiter
}

// NewTokenBucket starts full. Capacity below 1 is raised to 1.
func NewTokenBucket(capacity int, refillRate float64) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	return &TokenBucket{
		capacity: capacity,
		limiter:  rate.NewLimiter(rate.Limit(refillRate), capacity),
	}
}

// ForRequestsPerSecond sizes a bucket the way the importers do: capacity is
// the integer part of rps, refill is rps.
func ForRequestsPerSecond(rps float64) *TokenBucket {
	return NewTokenBucket(int(rps), rps)
}

func (b *TokenBucket) Capacity() int {
	return b.capacity
}

// WaitForTokens blocks until n tokens are granted, the timeout elapses or ctx
// is cancelled. It reports whether the tokens were granted; on false nothing
// is consumed.
func (b *TokenBucket) WaitForTokens(ctx context.Context, n int, timeout time.Duration) bool {
	if n > b.capacity {
		return false
	}
	if b.limiter.AllowN(time.Now(), n) {
		return true
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// WaitN fails fast when the deadline cannot be met, without reserving.
	return b.limiter.WaitN(waitCtx, n) == nil
}
