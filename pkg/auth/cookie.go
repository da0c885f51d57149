package auth

import (
	"net/http"
	"time"
)

// CookieConfig controls the attributes of the credential cookie.
type CookieConfig struct {
	// Domain is set on the cookie when non-empty.
	Domain string

	// Secure restricts the cookie to HTTPS. Enabled in production.
	Secure bool
}

// TokenCookie builds the cookie that hands a credential to the browser.
func (c CookieConfig) TokenCookie(token string, ttl time.Duration, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		Expires:  now.Add(ttl),
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpiredCookie builds a cookie that removes the credential from the browser.
func (c CookieConfig) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}
