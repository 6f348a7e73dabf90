package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/ratelimit"
	"github.com/givehope/donation-api/internal/request"
)

// PresetLimit creates rate limiting middleware bound to a named preset.
// Each client IP gets its own counter for the preset's fixed window.
// Every response carries X-RateLimit-* headers; denied requests get a
// 429 with Retry-After.
func PresetLimit(limiter *ratelimit.Limiter, registry *ratelimit.Registry, presetName string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			preset, ok := registry.Get(presetName)
			if !ok {
				// Unknown preset means a wiring bug, not a client error.
				logger.Error("unknown_rate_limit_preset",
					zap.String("preset", presetName),
					zap.String("path", r.URL.Path),
				)
				next.ServeHTTP(w, r)
				return
			}

			identifier := "ip:" + request.ClientIP(r)
			result := limiter.Allow(identifier, preset)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", result.ResetAt.UTC().Format(time.RFC3339))

			if !result.Allowed {
				retryAfter := int(math.Ceil(time.Until(result.ResetAt).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				logger.Warn("rate_limit_exceeded",
					zap.String("preset", preset.Name),
					zap.String("identifier", identifier),
					zap.String("path", r.URL.Path),
				)

				respondErrorJSON(w, r, http.StatusTooManyRequests, "Too Many Requests",
					fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", retryAfter), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
