package middlewares

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/npavlov/go-luhn-service/internal/models"
	"github.com/npavlov/go-luhn-service/internal/ratelimit"
)

const rateLimitMessage = "You are clicking too fast. Relax."

// RateLimitMiddleware admits requests within the caller's budget and answers 429 otherwise.
// If the policy itself fails the request is let through. A nil resolver keys callers
// on the socket peer.
func RateLimitMiddleware(
	policy ratelimit.Policy,
	resolver *IPResolver,
	log *zerolog.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
			caller := resolver.ClientIP(request)

			decision, err := policy.Allow(request.Context(), caller)
			if err != nil {
				log.Error().Err(err).Str("caller", caller).Msg("rate limit check failed, admitting request")
				next.ServeHTTP(response, request)

				return
			}

			if !decision.Allowed {
				retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
				log.Debug().Str("caller", caller).Int("retryAfter", retryAfter).Msg("rate limit exceeded")

				response.Header().Set("Content-Type", "application/json")
				response.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				response.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(response).Encode(models.ErrorResponse{
					Error:   "ratelimit exceeded",
					Message: rateLimitMessage,
				})

				return
			}

			next.ServeHTTP(response, request)
		})
	}
}
