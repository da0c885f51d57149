package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/debug"
	"github.com/inventorymaster/storefront/pkg/storage"
)

// Default renewal settings.
const (
	DefaultRenewalWindow = 5 * time.Minute
	DefaultTokenTTL      = 24 * time.Hour
)

// Config holds the Authenticator configuration. Everything the
// authenticator needs is passed in here; it never reads process state.
type Config struct {
	// Transports lists the enabled credential transports. Extraction
	// priority is always cookie, bearer, x-access-token. Default: all.
	Transports []Transport

	// RenewalWindow triggers renewal when a credential expires sooner than
	// this. Zero disables renewal.
	RenewalWindow time.Duration

	// RenewalTTL is the lifetime of a renewed credential. Default: 24h.
	RenewalTTL time.Duration

	// Cookie controls the renewed cookie's attributes.
	Cookie CookieConfig

	// Now returns the current time. Default: time.Now.
	Now func() time.Time

	// Logger receives failure and renewal logs. Default: slog.Default().
	Logger *slog.Logger
}

// Result is a successful authentication.
type Result struct {
	User      *api.User
	Claims    *Claims
	Transport Transport
}

// Authenticator resolves a request's credential to a user. It holds no
// per-request state and is safe for concurrent use.
type Authenticator struct {
	cfg     Config
	enabled map[Transport]bool
	tokens  TokenCodec
	users   PrincipalStore
	logger  *slog.Logger
}

// New creates an Authenticator.
func New(cfg Config, tokens TokenCodec, users PrincipalStore) (*Authenticator, error) {
	if tokens == nil {
		return nil, errors.New("auth: token codec is required")
	}
	if users == nil {
		return nil, errors.New("auth: principal store is required")
	}
	if cfg.RenewalWindow < 0 {
		return nil, fmt.Errorf("auth: renewal window must not be negative, got %s", cfg.RenewalWindow)
	}
	if len(cfg.Transports) == 0 {
		cfg.Transports = DefaultTransports()
	}
	if cfg.RenewalTTL <= 0 {
		cfg.RenewalTTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	enabled := make(map[Transport]bool, len(cfg.Transports))
	for _, t := range cfg.Transports {
		if _, ok := extractors[t]; !ok {
			return nil, fmt.Errorf("auth: unknown credential transport %q", t)
		}
		enabled[t] = true
	}

	return &Authenticator{
		cfg:     cfg,
		enabled: enabled,
		tokens:  tokens,
		users:   users,
		logger:  cfg.Logger,
	}, nil
}

// Authenticate extracts, verifies and resolves the request's credential.
// Errors wrap one of ErrMissingCredential, ErrInvalidCredential or
// ErrUnknownPrincipal.
func (a *Authenticator) Authenticate(ctx context.Context, r *http.Request) (*Result, error) {
	token, transport, ok := extract(r, a.enabled)
	if !ok {
		return nil, ErrMissingCredential
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}

	user, err := a.users.FindUserByID(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.Error("principal lookup failed",
				"user_id", claims.Subject,
				"error", err,
			)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnknownPrincipal, err)
	}

	debug.Log("auth", "credential resolved",
		"transport", transport,
		"user_id", user.ID,
		"expires_at", claims.ExpiresAt,
	)
	return &Result{User: user, Claims: claims, Transport: transport}, nil
}

// NeedsRenewal reports whether claims expire within the renewal window.
func (a *Authenticator) NeedsRenewal(claims *Claims) bool {
	if a.cfg.RenewalWindow <= 0 || claims == nil {
		return false
	}
	return claims.ExpiresAt.Sub(a.cfg.Now()) < a.cfg.RenewalWindow
}

// Renew mints a fresh credential for the subject and sets it as the token
// cookie on w.
func (a *Authenticator) Renew(w http.ResponseWriter, claims *Claims) error {
	token, err := a.tokens.Sign(claims.Subject, a.cfg.RenewalTTL)
	if err != nil {
		return fmt.Errorf("signing renewed token: %w", err)
	}
	http.SetCookie(w, a.cfg.Cookie.TokenCookie(token, a.cfg.RenewalTTL, a.cfg.Now()))
	debug.Log("auth", "credential renewed", "user_id", claims.Subject, "ttl", a.cfg.RenewalTTL)
	return nil
}

// LoggedIn reports whether the request carries a credential that verifies.
// The user id is not resolved.
func (a *Authenticator) LoggedIn(r *http.Request) bool {
	token, _, ok := extract(r, a.enabled)
	if !ok {
		return false
	}
	_, err := a.tokens.Verify(token)
	return err == nil
}
