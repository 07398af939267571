package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type LimiterSuite struct {
	suite.Suite
	clock   *fakeClock
	counter *MemoryCounter
	limiter *Limiter
	ctx     context.Context
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.clock = &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	s.counter = NewMemoryCounter()
	s.counter.now = s.clock.Now
	s.limiter = NewLimiter(s.counter, time.Hour, WithClock(s.clock.Now))
	s.ctx = context.Background()
}

func (s *LimiterSuite) TestRequestsUpToLimitAreAdmitted() {
	key := PartnerKey(uuid.New())
	for i := 1; i <= 3; i++ {
		d, err := s.limiter.Admit(s.ctx, key, 3)
		s.Require().NoError(err)
		s.True(d.Allowed)
		s.Equal(3, d.Limit)
		s.Equal(3-i, d.Remaining)
		s.Zero(d.RetryAfter)
	}
}

func (s *LimiterSuite) TestRequestOverLimitCarriesRetryAfter() {
	key := PartnerKey(uuid.New())
	for range 3 {
		_, err := s.limiter.Admit(s.ctx, key, 3)
		s.Require().NoError(err)
	}

	s.clock.Advance(15 * time.Minute)
	d, err := s.limiter.Admit(s.ctx, key, 3)
	s.Require().NoError(err)
	s.False(d.Allowed)
	s.Equal(0, d.Remaining)
	s.Equal(45*60, d.RetryAfter)
}

func (s *LimiterSuite) TestNextWindowAdmitsAgain() {
	key := PartnerKey(uuid.New())
	for range 4 {
		_, err := s.limiter.Admit(s.ctx, key, 3)
		s.Require().NoError(err)
	}

	s.clock.Advance(time.Hour)
	d, err := s.limiter.Admit(s.ctx, key, 3)
	s.Require().NoError(err)
	s.True(d.Allowed)
	s.Equal(2, d.Remaining)
	s.Equal(s.clock.Now().Add(time.Hour), d.ResetAt)
}

func (s *LimiterSuite) TestWindowRestartsFromFirstRequestAfterExpiry() {
	key := PartnerKey(uuid.New())
	_, err := s.limiter.Admit(s.ctx, key, 10)
	s.Require().NoError(err)

	s.clock.Advance(90 * time.Minute)
	restart := s.clock.Now()
	d, err := s.limiter.Admit(s.ctx, key, 10)
	s.Require().NoError(err)
	s.Equal(restart.Add(time.Hour), d.ResetAt)
	s.Equal(9, d.Remaining)
}

func (s *LimiterSuite) TestKeysAreIndependent() {
	a, b := PartnerKey(uuid.New()), PartnerKey(uuid.New())
	_, err := s.limiter.Admit(s.ctx, a, 1)
	s.Require().NoError(err)

	d, err := s.limiter.Admit(s.ctx, b, 1)
	s.Require().NoError(err)
	s.True(d.Allowed)
}

func TestConcurrentAdmissionNeverOverAdmits(t *testing.T) {
	limiter := NewLimiter(NewMemoryCounter(), time.Hour)
	key := PartnerKey(uuid.New())

	const limit = 50
	var admitted atomic.Int64
	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := limiter.Admit(context.Background(), key, limit)
			if err == nil && d.Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(limit), admitted.Load())
}

type failingCounter struct{ calls int }

func (f *failingCounter) Increment(context.Context, string, time.Duration) (int64, time.Time, error) {
	f.calls++
	return 0, time.Time{}, errors.New("connection refused")
}

func TestAdmitSurfacesCounterError(t *testing.T) {
	limiter := NewLimiter(&failingCounter{}, time.Hour)
	_, err := limiter.Admit(context.Background(), "partner:x", 10)
	require.Error(t, err)
}

func TestFallbackCounterKeepsEnforcingDuringOutage(t *testing.T) {
	primary := &failingCounter{}
	limiter := NewLimiter(NewFallbackCounter(primary, nil), time.Hour)
	key := PartnerKey(uuid.New())

	first, err := limiter.Admit(context.Background(), key, 1)
	require.NoError(t, err)
	require.True(t, first.Allowed)

	second, err := limiter.Admit(context.Background(), key, 1)
	require.NoError(t, err)
	require.False(t, second.Allowed)
	require.Equal(t, 2, primary.calls)
}

func TestMemoryCounterSweepDropsExpiredWindows(t *testing.T) {
	clock := &fakeClock{now: time.Unix(0, 0)}
	counter := NewMemoryCounter()
	counter.now = clock.Now

	_, _, _ = counter.Increment(context.Background(), "a", time.Minute)
	_, _, _ = counter.Increment(context.Background(), "b", time.Hour)

	clock.Advance(2 * time.Minute)
	require.Equal(t, 1, counter.Sweep())
}
