package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"
)

// KeyFunc extracts the rate limit key from a request.
// Returns empty string to skip rate limiting for this request.
type KeyFunc func(r *http.Request) string

// Middleware returns HTTP middleware that enforces limiter per key. Denied
// requests get a Retry-After header and are passed to deny, which writes the
// response body. Limiter errors fail open.
func Middleware(limiter Limiter, keyFunc KeyFunc, retryAfter time.Duration, deny http.HandlerFunc) func(http.Handler) http.Handler {
	secs := strconv.Itoa(int(math.Max(1, math.Ceil(retryAfter.Seconds()))))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ok, err := limiter.Allow(r.Context(), key)
			if err != nil {
				slog.Warn("ratelimit: limiter error, allowing request", "error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				w.Header().Set("Retry-After", secs)
				deny(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IPKeyFunc keys requests by client IP. Uses RemoteAddr only: X-Forwarded-For
// is client controlled unless a trusted proxy rewrites it.
func IPKeyFunc(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}
