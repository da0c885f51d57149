// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the storefront API.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets suited for API request latencies,
// ranging from 5ms to 10s. bcrypt-bound endpoints land in the upper half.
var APIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method"},
	)

	// InFlightRequests tracks the number of requests currently being served.
	InFlightRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_requests_in_flight",
			Help: "Requests in flight",
		},
	)

	// AuthFailuresTotal counts rejected authentications by failure kind
	// (missing_credential, invalid_credential, unknown_principal).
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_failures_total",
			Help: "Authentication failures",
		},
		[]string{"kind"},
	)

	// TokenRenewalsTotal counts credential renewals by outcome (ok, error).
	TokenRenewalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_token_renewals_total",
			Help: "Credential renewals",
		},
		[]string{"outcome"},
	)

	// UserOperationsTotal counts user account operations by name and outcome.
	UserOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_user_operations_total",
			Help: "User account operations",
		},
		[]string{"operation", "outcome"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"role"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		InFlightRequests,
		AuthFailuresTotal,
		TokenRenewalsTotal,
		UserOperationsTotal,
		RateLimitRejectedTotal,
	)
}
