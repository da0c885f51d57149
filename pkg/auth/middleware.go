package auth

import (
	"net/http"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/observability"
	"github.com/inventorymaster/storefront/pkg/transport"
)

// Middleware creates HTTP middleware from an Authenticator and optional
// RateLimiter. Requests whose path is in bypassEndpoints pass through
// untouched. Every other request either reaches next with the resolved user
// in its context or is terminated with 401.
func Middleware(authn *Authenticator, limiter RateLimiter, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}
	logger := authn.logger

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result, err := authn.Authenticate(r.Context(), r)
			if err != nil {
				kind := FailureKind(err)
				logger.Warn("authentication failed",
					"kind", kind,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"request_id", transport.RequestIDFromContext(r.Context()),
					"error", err,
				)
				observability.AuthFailuresTotal.WithLabelValues(kind).Inc()
				transport.WriteAPIError(w, api.NewUnauthorizedError(NotAuthorizedMessage))
				return
			}

			user := result.User
			logger.Debug("authentication succeeded",
				"user_id", user.ID,
				"transport", string(result.Transport),
				"path", r.URL.Path,
			)

			if limiter != nil {
				if err := limiter.Allow(r.Context(), user); err != nil {
					logger.Warn("rate limit exceeded",
						"user_id", user.ID,
						"role", user.Role,
					)
					observability.RateLimitRejectedTotal.WithLabelValues(user.Role).Inc()
					transport.WriteAPIError(w, api.NewTooManyRequestsError("rate limit exceeded"))
					return
				}
			}

			// Renewal is a side effect only. A failure here never rejects
			// an authenticated request.
			if authn.NeedsRenewal(result.Claims) {
				if err := authn.Renew(w, result.Claims); err != nil {
					logger.Error("token renewal failed",
						"user_id", user.ID,
						"error", err,
					)
					observability.TokenRenewalsTotal.WithLabelValues("error").Inc()
				} else {
					logger.Debug("token renewed", "user_id", user.ID)
					observability.TokenRenewalsTotal.WithLabelValues("ok").Inc()
				}
			}

			next.ServeHTTP(w, r.WithContext(SetUser(r.Context(), user)))
		})
	}
}
