// Package ratelimit provides per-partner admission control over a fixed window.
//
// The window starts at the first request for a key and resets on the first
// request after it expires. Counting is delegated to a Counter so a
// multi-instance deployment can swap the in-process map for a shared store.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Counter performs a single indivisible increment-and-read for a key.
// Implementations must never split the increment from the read: a separate
// GET followed by SET lets concurrent requests over-admit.
type Counter interface {
	// Increment adds one to the key's counter for the current window and
	// returns the new count together with the instant the window resets.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

// PartnerKey builds the counter key for a partner. Admission is never keyed by network address.
func PartnerKey(partnerID uuid.UUID) string {
	return "partner:" + partnerID.String()
}

// MemoryCounter is a process-local Counter. It is only correct for a
// single-instance deployment.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*fixedWindow
	now     func() time.Time
}

type fixedWindow struct {
	count   int64
	resetAt time.Time
}

// NewMemoryCounter creates an empty in-memory counter.
func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		windows: make(map[string]*fixedWindow),
		now:     time.Now,
	}
}

// Increment implements Counter.
func (m *MemoryCounter) Increment(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w := m.windows[key]
	if w == nil || !now.Before(w.resetAt) {
		w = &fixedWindow{resetAt: now.Add(window)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// Reset drops the counter for key.
func (m *MemoryCounter) Reset(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.windows, key)
}

// Sweep removes expired windows. Long-running processes call it periodically
// so partners that stopped submitting do not pin memory.
func (m *MemoryCounter) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
			removed++
		}
	}
	return removed
}
