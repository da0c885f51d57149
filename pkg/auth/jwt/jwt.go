// Package jwt signs and verifies storefront credentials as HS256 JSON Web
// Tokens carrying the user id in an "id" claim.
package jwt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/inventorymaster/storefront/pkg/auth"
)

// tokenClaims is the wire form of a credential: {"id","iat","exp"}.
type tokenClaims struct {
	UserID userID `json:"id"`
	jwtlib.RegisteredClaims
}

// userID is the "id" claim. Tokens minted here carry a string; tokens from
// issuers with numeric ids carry a JSON number, kept in its literal form.
type userID string

func (u *userID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = userID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id claim must be a string or a number: %w", err)
	}
	*u = userID(n.String())
	return nil
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager signs and verifies tokens with a shared HMAC secret.
type Manager struct {
	secret []byte
	now    func() time.Time
	parser *jwtlib.Parser
}

var _ auth.TokenCodec = (*Manager)(nil)

// New creates a Manager. The secret must not be empty.
func New(secret string, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("jwt: signing secret is required")
	}
	m := &Manager{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.parser = jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(m.now),
	)
	return m, nil
}

// Sign mints a token for the user id, valid for ttl from now.
func (m *Manager) Sign(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("jwt: subject is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("jwt: ttl must be positive, got %s", ttl)
	}
	now := m.now()
	claims := tokenClaims{
		UserID: userID(subject),
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's algorithm, signature and expiry, and returns
// its claims. A token without an id claim is rejected.
func (m *Manager) Verify(token string) (*auth.Claims, error) {
	claims := &tokenClaims{}
	_, err := m.parser.ParseWithClaims(token, claims, func(*jwtlib.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt: %w", err)
	}
	if claims.UserID == "" {
		return nil, errors.New("jwt: token missing id claim")
	}

	out := &auth.Claims{
		Subject:   string(claims.UserID),
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
