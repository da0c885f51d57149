package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/auth"
	"github.com/inventorymaster/storefront/pkg/debug"
	"github.com/inventorymaster/storefront/pkg/observability"
	"github.com/inventorymaster/storefront/pkg/storage"
)

// Client-facing messages.
const (
	msgEmailTaken         = "email has already been registered"
	msgInvalidCredentials = "invalid email or password"
	msgWrongOldPassword   = "old password is incorrect"
	msgUserNotFound       = "user not found"
)

// Session is the result of a successful registration or login.
type Session struct {
	User  *api.User
	Token string
	TTL   time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithTokenTTL sets the lifetime of credentials issued at login.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithBcryptCost sets the bcrypt work factor for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service implements the account operations on top of a Store.
type Service struct {
	store    Store
	tokens   auth.TokenSigner
	tokenTTL time.Duration
	cost     int
	logger   *slog.Logger

	// dummyHash is compared against when the email is unknown so that
	// login takes the same time whether or not the account exists.
	dummyHash []byte
}

// NewService creates a Service.
func NewService(store Store, tokens auth.TokenSigner, opts ...Option) (*Service, error) {
	s := &Service{
		store:    store,
		tokens:   tokens,
		tokenTTL: auth.DefaultTokenTTL,
		cost:     bcrypt.DefaultCost,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cost < bcrypt.MinCost || s.cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("users: bcrypt cost %d out of range [%d, %d]", s.cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("storefront-timing-pad"), s.cost)
	if err != nil {
		return nil, fmt.Errorf("users: generating timing hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Register creates an account and issues a credential for it.
func (s *Service) Register(ctx context.Context, req api.RegisterRequest) (*Session, error) {
	if apiErr := api.ValidateRegister(&req); apiErr != nil {
		s.record("register", "rejected")
		return nil, apiErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		s.record("register", "error")
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &api.User{
		ID:    api.NewUserID(),
		Name:  req.Name,
		Email: req.Email,
		Photo: api.DefaultPhoto,
		Role:  api.RoleCustomer,
	}
	if err := s.store.CreateUser(ctx, user, string(hash)); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			s.record("register", "rejected")
			return nil, api.NewConflictError("email", msgEmailTaken)
		}
		s.record("register", "error")
		return nil, fmt.Errorf("creating user: %w", err)
	}

	session, err := s.issue(user)
	if err != nil {
		s.record("register", "error")
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	s.record("register", "ok")
	return session, nil
}

// Login checks an email and password and issues a credential. Unknown
// emails and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, req api.LoginRequest) (*Session, error) {
	if apiErr := api.ValidateLogin(&req); apiErr != nil {
		s.record("login", "rejected")
		return nil, apiErr
	}

	creds, err := s.store.GetCredentialsByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			debug.Log("users", "login for unknown email")
			s.record("login", "rejected")
			return nil, api.NewInvalidRequestError("", msgInvalidCredentials)
		}
		s.record("login", "error")
		return nil, fmt.Errorf("looking up credentials: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)); err != nil {
		debug.Log("users", "login password mismatch", "user_id", creds.User.ID)
		s.record("login", "rejected")
		return nil, api.NewInvalidRequestError("", msgInvalidCredentials)
	}

	session, err := s.issue(creds.User)
	if err != nil {
		s.record("login", "error")
		return nil, err
	}
	s.record("login", "ok")
	return session, nil
}

// UpdateUser applies the non-nil fields of req to the user's profile and
// returns the stored result.
func (s *Service) UpdateUser(ctx context.Context, id string, req api.UpdateUserRequest) (*api.User, error) {
	if apiErr := api.ValidateUpdateUser(&req); apiErr != nil {
		s.record("update_user", "rejected")
		return nil, apiErr
	}

	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, s.lookupError("update_user", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Photo != nil {
		user.Photo = *req.Photo
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, s.lookupError("update_user", err)
	}

	updated, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, s.lookupError("update_user", err)
	}
	s.record("update_user", "ok")
	return updated, nil
}

// ChangePassword replaces the user's password after checking the old one.
func (s *Service) ChangePassword(ctx context.Context, id string, req api.ChangePasswordRequest) error {
	if apiErr := api.ValidateChangePassword(&req); apiErr != nil {
		s.record("change_password", "rejected")
		return apiErr
	}

	creds, err := s.store.GetCredentialsByID(ctx, id)
	if err != nil {
		return s.lookupError("change_password", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.OldPassword)); err != nil {
		s.record("change_password", "rejected")
		return api.NewInvalidRequestError("old_password", msgWrongOldPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		s.record("change_password", "error")
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, id, string(hash)); err != nil {
		return s.lookupError("change_password", err)
	}

	s.logger.Info("password changed", "user_id", id)
	s.record("change_password", "ok")
	return nil
}

func (s *Service) issue(user *api.User) (*Session, error) {
	token, err := s.tokens.Sign(user.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return &Session{User: user, Token: token, TTL: s.tokenTTL}, nil
}

// lookupError maps a store error on an authenticated user's own record.
// The record can vanish between authentication and the handler.
func (s *Service) lookupError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		s.record(op, "rejected")
		return api.NewNotFoundError(msgUserNotFound)
	}
	s.record(op, "error")
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) record(op, outcome string) {
	observability.UserOperationsTotal.WithLabelValues(op, outcome).Inc()
}
