package ratelimit

import (
	"context"
	"time"

	"leadgate/platform/logger"
	"leadgate/platform/metrics"
)

// FallbackCounter serves from a shared primary counter and degrades to an
// in-process counter while the primary is unreachable. Admission stays
// enforced per instance during an outage instead of failing open.
type FallbackCounter struct {
	primary  Counter
	fallback *MemoryCounter
	log      *logger.Logger
}

// NewFallbackCounter wraps primary with an in-memory fallback.
func NewFallbackCounter(primary Counter, log *logger.Logger) *FallbackCounter {
	return &FallbackCounter{
		primary:  primary,
		fallback: NewMemoryCounter(),
		log:      log,
	}
}

// Increment implements Counter.
func (f *FallbackCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	count, resetAt, err := f.primary.Increment(ctx, key, window)
	if err == nil {
		return count, resetAt, nil
	}

	metrics.CounterFallbacks.Inc()
	if f.log != nil {
		f.log.WithContext(ctx).Warn("rate limit counter unavailable, using in-process fallback", "key", key, "error", err)
	}
	return f.fallback.Increment(ctx, key, window)
}

// Sweep clears expired fallback windows.
func (f *FallbackCounter) Sweep() int {
	return f.fallback.Sweep()
}
