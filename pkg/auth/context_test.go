package auth

import (
	"context"
	"testing"

	"github.com/inventorymaster/storefront/pkg/api"
)

func TestUserContextRoundTrip(t *testing.T) {
	if got := UserFromContext(context.Background()); got != nil {
		t.Errorf("expected nil user, got %+v", got)
	}

	u := &api.User{ID: "42", Name: "Ada"}
	ctx := SetUser(context.Background(), u)
	if got := UserFromContext(ctx); got != u {
		t.Errorf("UserFromContext = %+v, want %+v", got, u)
	}
}

func TestParseTransport(t *testing.T) {
	tests := []struct {
		in      string
		want    Transport
		wantErr bool
	}{
		{"cookie", TransportCookie, false},
		{" Bearer ", TransportBearer, false},
		{"x-access-token", TransportAccessToken, false},
		{"basic", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTransport(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTransport(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTransport(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpiredCookie(t *testing.T) {
	c := CookieConfig{Domain: "example.com"}.ExpiredCookie()
	if c.Name != CookieName || c.Value != "" {
		t.Errorf("cookie = %s=%q, want %s=\"\"", c.Name, c.Value, CookieName)
	}
	if c.MaxAge >= 0 {
		t.Errorf("MaxAge = %d, want negative", c.MaxAge)
	}
	if c.Domain != "example.com" {
		t.Errorf("Domain = %q, want example.com", c.Domain)
	}
}
