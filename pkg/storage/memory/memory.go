// Package memory provides an in-memory user store for testing and
// lightweight deployments. Users are lost when the process restarts.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/auth"
	"github.com/inventorymaster/storefront/pkg/storage"
	"github.com/inventorymaster/storefront/pkg/users"
)

// entry holds a stored user and its password hash.
type entry struct {
	user         api.User
	passwordHash string
}

// Store is an in-memory user store indexed by ID and by email.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]*entry
	byEmail map[string]string // lower-cased email -> id
}

// Ensure Store implements the store contracts at compile time.
var (
	_ users.Store         = (*Store)(nil)
	_ auth.PrincipalStore = (*Store)(nil)
)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		byID:    make(map[string]*entry),
		byEmail: make(map[string]string),
	}
}

// CreateUser stores a new user with the given password hash. CreatedAt and
// UpdatedAt are set when zero.
func (s *Store) CreateUser(_ context.Context, user *api.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := s.byID[user.ID]; exists {
		return storage.ErrConflict
	}
	if _, exists := s.byEmail[email]; exists {
		return storage.ErrConflict
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	s.byID[user.ID] = &entry{user: *user, passwordHash: passwordHash}
	s.byEmail[email] = user.ID
	return nil
}

// FindUserByID returns a copy of the user. The password hash is not included.
func (s *Store) FindUserByID(_ context.Context, id string) (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u := e.user
	return &u, nil
}

// GetCredentialsByEmail returns the user and password hash for login.
func (s *Store) GetCredentialsByEmail(_ context.Context, email string) (*storage.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return credentials(s.byID[id]), nil
}

// GetCredentialsByID returns the user and password hash by ID.
func (s *Store) GetCredentialsByID(_ context.Context, id string) (*storage.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return credentials(e), nil
}

// UpdateUser replaces the profile fields of an existing user. Email, role and
// CreatedAt are not changed. UpdatedAt is refreshed and written back to user.
func (s *Store) UpdateUser(_ context.Context, user *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[user.ID]
	if !ok {
		return storage.ErrNotFound
	}

	e.user.Name = user.Name
	e.user.Phone = user.Phone
	e.user.Bio = user.Bio
	e.user.Photo = user.Photo
	e.user.UpdatedAt = time.Now().UTC()

	*user = e.user
	return nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return storage.ErrNotFound
	}
	e.passwordHash = passwordHash
	e.user.UpdatedAt = time.Now().UTC()
	return nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func credentials(e *entry) *storage.Credentials {
	u := e.user
	return &storage.Credentials{User: &u, PasswordHash: e.passwordHash}
}
