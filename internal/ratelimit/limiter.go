package ratelimit

import (
	"context"
	"math"
	"time"

	"leadgate/platform/logger"
)

// DefaultWindow is the admission window applied to partners.
const DefaultWindow = time.Hour

// Decision is the outcome of one admission check. Over-limit is a normal
// decision, not an error.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds; zero when allowed
}

// Limiter admits requests against a per-key limit.
type Limiter struct {
	counter Counter
	window  time.Duration
	log     *logger.Logger
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithLogger sets the logger used for rejections.
func WithLogger(log *logger.Logger) Option {
	return func(l *Limiter) { l.log = log }
}

// WithClock overrides the clock used to compute retry-after.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a limiter over counter. A non-positive window falls back to DefaultWindow.
func NewLimiter(counter Counter, window time.Duration, opts ...Option) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	l := &Limiter{counter: counter, window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Window returns the configured admission window.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// Admit counts one request for key and decides whether it fits under limit.
// The error is non-nil only when the counter itself failed.
func (l *Limiter) Admit(ctx context.Context, key string, limit int) (Decision, error) {
	count, resetAt, err := l.counter.Increment(ctx, key, l.window)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Allowed: count <= int64(limit),
		Limit:   limit,
		ResetAt: resetAt,
	}
	if d.Allowed {
		d.Remaining = limit - int(count)
		return d, nil
	}

	d.RetryAfter = retryAfterSeconds(resetAt.Sub(l.now()))
	if l.log != nil {
		l.log.WithContext(ctx).Debug("admission denied", "key", key, "count", count, "limit", limit, "retryAfter", d.RetryAfter)
	}
	return d, nil
}

func retryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(d.Seconds()))
}
