package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// Transport names a place a credential can be carried in.
type Transport string

const (
	TransportCookie      Transport = "cookie"
	TransportBearer      Transport = "bearer"
	TransportAccessToken Transport = "x-access-token"
)

const (
	// CookieName is the cookie carrying the credential.
	CookieName = "token"

	// AccessTokenHeader is the custom header carrying the credential.
	AccessTokenHeader = "x-access-token"

	bearerPrefix = "Bearer "
)

// transportOrder is the fixed extraction priority. Configuration only
// enables or disables entries.
var transportOrder = []Transport{TransportCookie, TransportBearer, TransportAccessToken}

// DefaultTransports enables every transport.
func DefaultTransports() []Transport {
	return append([]Transport(nil), transportOrder...)
}

// ParseTransport converts a configuration value to a Transport.
func ParseTransport(s string) (Transport, error) {
	switch t := Transport(strings.ToLower(strings.TrimSpace(s))); t {
	case TransportCookie, TransportBearer, TransportAccessToken:
		return t, nil
	}
	return "", fmt.Errorf("unknown credential transport %q", s)
}

// extractor reads one transport's credential. An empty result means the
// transport has nothing to offer and the next one is tried.
type extractor func(r *http.Request) string

var extractors = map[Transport]extractor{
	TransportCookie:      fromCookie,
	TransportBearer:      fromBearer,
	TransportAccessToken: fromAccessToken,
}

func fromCookie(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func fromBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	// The credential is everything after the first space.
	_, token, _ := strings.Cut(header, " ")
	return token
}

func fromAccessToken(r *http.Request) string {
	return r.Header.Get(AccessTokenHeader)
}

// extract returns the first non-empty credential among the enabled
// transports, in priority order.
func extract(r *http.Request, enabled map[Transport]bool) (string, Transport, bool) {
	for _, t := range transportOrder {
		if !enabled[t] {
			continue
		}
		if token := extractors[t](r); token != "" {
			return token, t, true
		}
	}
	return "", "", false
}
