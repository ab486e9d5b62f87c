package limiter

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int64
}

// MemoryLimiter is an in-process fixed-window counter. State is local to the
// process, so it does not enforce a global limit across replicas; use it for
// tests and single-instance deployments.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// NewMemoryLimiterWithClock injects a clock, for tests.
func NewMemoryLimiterWithClock(now func() time.Time) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		now:     now,
	}
}

func (m *MemoryLimiter) Allow(ctx context.Context, id Identity, limit Limit) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	windowStart := now.Truncate(limit.Window)
	resetTime := windowStart.Add(limit.Window)
	key := string(id.Namespace) + ":" + id.Key

	w, exists := m.windows[key]
	if !exists || w.start.Before(windowStart) {
		w = &window{start: windowStart}
		m.windows[key] = w
	}

	w.count++
	remaining := limit.Requests - w.count
	if remaining < 0 {
		remaining = 0
	}

	if w.count > limit.Requests {
		return Decision{
			Allow:      false,
			Remaining:  0,
			RetryAfter: resetTime.Sub(now),
			ResetTime:  resetTime,
		}, nil
	}

	return Decision{
		Allow:     true,
		Remaining: remaining,
		ResetTime: resetTime,
	}, nil
}
