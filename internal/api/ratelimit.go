package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/garagehubapp/garagehub-server/internal/http/response"
	"github.com/garagehubapp/garagehub-server/internal/ratelimit"
)

// RateLimiter is the keyed limiter used by the HTTP middleware.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a limiter allowing ratePerInterval requests per
// interval, with the given burst.
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	return ratelimit.New(float64(ratePerInterval)/interval.Seconds(), burst)
}

// RateLimitMiddleware limits every request by client IP.
func RateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			if !limiter.Allow(ip) {
				if logger != nil {
					logger.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
				}
				response.TooManyRequests(w, "too many requests, slow down", logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PathRateLimitMiddleware limits requests whose path starts with prefix,
// keyed by client IP. Other paths pass through untouched.
func PathRateLimitMiddleware(prefix string, limiter *RateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, prefix) {
				ip := getClientIP(r)
				if !limiter.Allow(ip) {
					if logger != nil {
						logger.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
					}
					response.TooManyRequests(w, "too many attempts, try again later", logger)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP, honoring proxy headers.
func getClientIP(r *http.Request) string {
	// X-Forwarded-For may hold a comma-separated chain; the first entry
	// is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx > 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
