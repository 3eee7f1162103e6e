package engine

import (
	"context"

	"golang.org/x/time/rate"
)

// NewBWLimiter creates a rate.Limiter that caps copy throughput to
// bytesPerSec. The burst is one copy chunk so a full chunk can pass without
// being split, unless the rate itself is lower.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20 // 1 MB
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// waitN blocks until lim admits n bytes. WaitN rejects requests larger than
// the burst, so n is taken in burst-sized pieces. A nil limiter never waits.
func waitN(ctx context.Context, lim *rate.Limiter, n int64) error {
	if lim == nil || lim.Limit() == rate.Inf {
		return nil
	}
	burst := int64(lim.Burst())
	if burst <= 0 {
		return nil
	}
	for n > 0 {
		step := min(n, burst)
		if err := lim.WaitN(ctx, int(step)); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
