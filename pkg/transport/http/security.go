package http

import (
	"net/http"
	"strings"
)

// securityHeaders sets the Content-Security-Policy and companion headers on
// every response. connectOrigins are added to connect-src so the frontend
// can reach the API.
func securityHeaders(connectOrigins []string) func(http.Handler) http.Handler {
	connect := append([]string{"'self'"}, connectOrigins...)
	csp := strings.Join([]string{
		"default-src 'self'",
		"connect-src " + strings.Join(connect, " "),
		"script-src 'self' 'unsafe-inline'",
		"style-src 'self' https: 'unsafe-inline'",
		"img-src 'self' data:",
		"object-src 'none'",
	}, "; ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "SAMEORIGIN")
			h.Set("Referrer-Policy", "no-referrer")
			next.ServeHTTP(w, r)
		})
	}
}
