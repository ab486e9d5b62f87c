package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"shortlink/pkg/limiter"
	"shortlink/pkg/logging"
)

type RateLimit struct {
	limiter limiter.RateLimiter
	limit   limiter.Limit
	logger  *logging.Logger
}

func NewRateLimit(l limiter.RateLimiter, limit limiter.Limit, logger *logging.Logger) *RateLimit {
	return &RateLimit{limiter: l, limit: limit, logger: logger}
}

// Handler gates the wrapped handler behind the fixed-window quota, keyed by
// client address. Quota consumption happens before the protected handler
// runs. If the counter store is unreachable the gate fails open: admitting
// traffic during a Redis outage beats taking link creation down with it.
func (rl *RateLimit) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		id := limiter.Identity{Namespace: "ip", Key: key}

		dec, err := rl.limiter.Allow(r.Context(), id, rl.limit)
		if err != nil {
			rl.logger.Warn(r.Context(), "rate limiter unavailable, failing open", "error", err.Error())
			next.ServeHTTP(w, r)
			return
		}

		rl.logger.LogRateLimit(r.Context(), key, dec.Allow)

		if !dec.Allow {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", dec.RetryAfter.Seconds()+0.5))
			writeError(w, http.StatusTooManyRequests, "Too Many Requests", "You have exceeded the rate limit. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey identifies the caller: first hop of X-Forwarded-For when present,
// else the remote address host, else a fixed anonymous key.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "anonymous"
}
