package users_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/auth/jwt"
	"github.com/inventorymaster/storefront/pkg/storage"
	"github.com/inventorymaster/storefront/pkg/storage/memory"
	"github.com/inventorymaster/storefront/pkg/users"
)

func newTestService(t *testing.T) (*users.Service, *memory.Store, *jwt.Manager) {
	t.Helper()
	store := memory.New()
	tokens, err := jwt.New("users-test-secret")
	if err != nil {
		t.Fatalf("jwt.New: %v", err)
	}
	svc, err := users.NewService(store, tokens, users.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, store, tokens
}

func register(t *testing.T, svc *users.Service) *users.Session {
	t.Helper()
	session, err := svc.Register(context.Background(), api.RegisterRequest{
		Name:     "Ada Lovelace",
		Email:    "Ada@Example.com",
		Password: "analytical",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return session
}

// apiErrorType extracts the APIError type, or "" for other errors.
func apiErrorType(err error) api.ErrorType {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type
	}
	return ""
}

func TestRegister(t *testing.T) {
	svc, store, tokens := newTestService(t)

	session := register(t, svc)

	if session.User.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized %q", session.User.Email, "ada@example.com")
	}
	if session.User.Role != api.RoleCustomer {
		t.Errorf("role = %q, want %q", session.User.Role, api.RoleCustomer)
	}
	if session.User.Photo != api.DefaultPhoto {
		t.Errorf("photo = %q, want %q", session.User.Photo, api.DefaultPhoto)
	}
	if session.TTL != 24*time.Hour {
		t.Errorf("ttl = %s, want 24h", session.TTL)
	}

	claims, err := tokens.Verify(session.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != session.User.ID {
		t.Errorf("token subject = %q, want %q", claims.Subject, session.User.ID)
	}

	creds, err := store.GetCredentialsByEmail(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("GetCredentialsByEmail: %v", err)
	}
	if creds.PasswordHash == "analytical" {
		t.Error("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte("analytical")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), api.RegisterRequest{
		Name:     "Impostor",
		Email:    "ADA@example.com",
		Password: "password1",
	})
	if got := apiErrorType(err); got != api.ErrorTypeConflict {
		t.Errorf("error type = %q, want %q (err=%v)", got, api.ErrorTypeConflict, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	tests := []struct {
		name string
		req  api.RegisterRequest
	}{
		{"missing name", api.RegisterRequest{Email: "a@b.co", Password: "secret1"}},
		{"bad email", api.RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{"short password", api.RegisterRequest{Name: "A", Email: "a@b.co", Password: "123"}},
		{"password longer than bcrypt accepts", api.RegisterRequest{Name: "A", Email: "a@b.co", Password: strings.Repeat("x", 80)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			if got := apiErrorType(err); got != api.ErrorTypeInvalidRequest {
				t.Errorf("error type = %q, want %q (err=%v)", got, api.ErrorTypeInvalidRequest, err)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _, tokens := newTestService(t)
	registered := register(t, svc)

	session, err := svc.Login(context.Background(), api.LoginRequest{Email: " ada@example.COM ", Password: "analytical"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.User.ID != registered.User.ID {
		t.Errorf("user id = %q, want %q", session.User.ID, registered.User.ID)
	}
	if _, err := tokens.Verify(session.Token); err != nil {
		t.Errorf("issued token does not verify: %v", err)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	register(t, svc)

	_, wrongPassword := svc.Login(context.Background(), api.LoginRequest{Email: "ada@example.com", Password: "babbage"})
	_, unknownEmail := svc.Login(context.Background(), api.LoginRequest{Email: "charles@example.com", Password: "babbage"})

	if wrongPassword == nil || unknownEmail == nil {
		t.Fatalf("expected both logins to fail, got %v and %v", wrongPassword, unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("messages differ: %q vs %q", wrongPassword.Error(), unknownEmail.Error())
	}
	if got := apiErrorType(wrongPassword); got != api.ErrorTypeInvalidRequest {
		t.Errorf("error type = %q, want %q", got, api.ErrorTypeInvalidRequest)
	}
}

func TestLoginMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), api.LoginRequest{Email: "ada@example.com"})
	if got := apiErrorType(err); got != api.ErrorTypeInvalidRequest {
		t.Errorf("error type = %q, want %q", got, api.ErrorTypeInvalidRequest)
	}
}

func TestUpdateUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	session := register(t, svc)

	phone := "+44 20 7946 0000"
	bio := "First programmer"
	updated, err := svc.UpdateUser(context.Background(), session.User.ID, api.UpdateUserRequest{
		Phone: &phone,
		Bio:   &bio,
	})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Phone != phone || updated.Bio != bio {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Name != "Ada Lovelace" {
		t.Errorf("name = %q, want unchanged %q", updated.Name, "Ada Lovelace")
	}
	if updated.Email != "ada@example.com" {
		t.Errorf("email = %q, want unchanged", updated.Email)
	}
}

func TestUpdateUserUnknown(t *testing.T) {
	svc, _, _ := newTestService(t)
	name := "Ghost"

	_, err := svc.UpdateUser(context.Background(), "missing", api.UpdateUserRequest{Name: &name})
	if got := apiErrorType(err); got != api.ErrorTypeNotFound {
		t.Errorf("error type = %q, want %q", got, api.ErrorTypeNotFound)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	session := register(t, svc)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, session.User.ID, api.ChangePasswordRequest{OldPassword: "wrong-old", Password: "difference"})
	if got := apiErrorType(err); got != api.ErrorTypeInvalidRequest {
		t.Fatalf("error type = %q, want %q", got, api.ErrorTypeInvalidRequest)
	}

	if err := svc.ChangePassword(ctx, session.User.ID, api.ChangePasswordRequest{OldPassword: "analytical", Password: "difference"}); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := svc.Login(ctx, api.LoginRequest{Email: "ada@example.com", Password: "analytical"}); err == nil {
		t.Error("old password still accepted")
	}
	if _, err := svc.Login(ctx, api.LoginRequest{Email: "ada@example.com", Password: "difference"}); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestChangePasswordTooLong(t *testing.T) {
	svc, _, _ := newTestService(t)
	session := register(t, svc)

	err := svc.ChangePassword(context.Background(), session.User.ID, api.ChangePasswordRequest{
		OldPassword: "analytical",
		Password:    strings.Repeat("x", 80),
	})
	if got := apiErrorType(err); got != api.ErrorTypeInvalidRequest {
		t.Errorf("error type = %q, want %q (err=%v)", got, api.ErrorTypeInvalidRequest, err)
	}
}

// failingStore wraps a memory store and fails credential lookups.
type failingStore struct {
	*memory.Store
}

func (failingStore) GetCredentialsByEmail(context.Context, string) (*storage.Credentials, error) {
	return nil, errors.New("connection reset")
}

func TestLoginStoreErrorIsNotAPIError(t *testing.T) {
	tokens, err := jwt.New("users-test-secret")
	if err != nil {
		t.Fatalf("jwt.New: %v", err)
	}
	svc, err := users.NewService(failingStore{memory.New()}, tokens, users.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Login(context.Background(), api.LoginRequest{Email: "ada@example.com", Password: "analytical"})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apiErrorType(err); got != "" {
		t.Errorf("store failure surfaced as client error %q", got)
	}
}

func TestNewServiceRejectsBadCost(t *testing.T) {
	tokens, err := jwt.New("users-test-secret")
	if err != nil {
		t.Fatalf("jwt.New: %v", err)
	}
	if _, err := users.NewService(memory.New(), tokens, users.WithBcryptCost(100)); err == nil {
		t.Error("expected error for out-of-range cost")
	}
}
