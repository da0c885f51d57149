package auth

import (
	"context"
	"errors"
	"time"

	"github.com/inventorymaster/storefront/pkg/api"
)

// NotAuthorizedMessage is the only message clients see for an
// authentication failure, whatever the underlying kind.
const NotAuthorizedMessage = "Not authorized, please login"

// Failure kinds. All of them terminate the request with 401.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUnknownPrincipal  = errors.New("unknown principal")
	ErrTooManyRequests   = errors.New("rate limit exceeded")
)

// FailureKind returns the label used in logs and metrics for an
// authentication error.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrUnknownPrincipal):
		return "unknown_principal"
	default:
		return "unknown"
	}
}

// Claims is the verified content of a bearer credential.
type Claims struct {
	// Subject is the id of the user the credential was issued to.
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenVerifier checks a credential's signature and expiry.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// TokenSigner mints a credential for a user id.
type TokenSigner interface {
	Sign(subject string, ttl time.Duration) (string, error)
}

// TokenCodec signs and verifies credentials with the same key.
type TokenCodec interface {
	TokenVerifier
	TokenSigner
}

// PrincipalStore resolves a user id to a user. Implementations return an
// error wrapping storage.ErrNotFound when the id is unknown.
type PrincipalStore interface {
	FindUserByID(ctx context.Context, id string) (*api.User, error)
}
