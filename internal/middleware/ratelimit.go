package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"estate-hub/internal/model"
	"estate-hub/internal/ratelimit"
)

// limiterKey buckets the request for rate limiting: first entry of
// X-Forwarded-For, then X-Real-IP, then the "unknown" sentinel. The
// socket address is deliberately not used; behind the expected reverse
// proxy it would bucket every client together anyway.
func limiterKey(r *http.Request) string {
	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return "unknown"
}

// RateLimit guards a single route with the given limiter. Applied to
// the small set of public endpoints that accept anonymous writes
// (login, contact form).
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := limiter.Check(limiterKey(r))

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeJSON(w, http.StatusTooManyRequests,
					model.ErrorResponse("RATE_LIMITED", "Too many requests", ""))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
