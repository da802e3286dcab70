package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/ratelimit"
)

// RateLimitObserver is told about every rejected request.
type RateLimitObserver interface {
	RateLimited()
}

// RateLimit rejects clients that exceed the limiter's quota with 429 and a
// Retry-After header. Clients are keyed by r.RemoteAddr, which is the socket
// peer unless chi's RealIP ran earlier (server.trust_proxy). When the limiter fails the
// request is let through. observer may be nil.
func RateLimit(limiter ratelimit.Limiter, observer RateLimitObserver, base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromContextOrDefault(r.Context(), base)

			result, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				log.Warn("rate limiter unavailable, allowing request", slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			resetSeconds := strconv.Itoa(int(math.Ceil(result.ResetAfter.Seconds())))
			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(result.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(result.Remaining))
			h.Set("RateLimit-Reset", resetSeconds)

			if !result.Allowed {
				if observer != nil {
					observer.RateLimited()
				}
				h.Set("Retry-After", resetSeconds)
				shared.RespondWithErrorAndLog(w, r, shared.ErrorResponse{
					Status:  http.StatusTooManyRequests,
					Error:   "Too many requests",
					Message: "Too many requests from this address, please try again later.",
					Code:    "RATE_LIMITED",
				}, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
