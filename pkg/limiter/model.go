package limiter

import (
	"context"
	"time"
)

type Namespace string

// Limit is a fixed-window policy: at most Requests admissions per Window.
// The window resets at fixed boundaries rather than sliding.
type Limit struct {
	Requests int64
	Window   time.Duration
}

type Decision struct {
	Allow      bool
	Remaining  int64
	RetryAfter time.Duration
	ResetTime  time.Time
}

// Identity defines who is being rate-limited: a namespace (for example "ip")
// and the key within it.
type Identity struct {
	Namespace Namespace
	Key       string
}

type RateLimiter interface {
	Allow(ctx context.Context, id Identity, limit Limit) (Decision, error)
}
