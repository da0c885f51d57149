package users

import (
	"context"

	"github.com/inventorymaster/storefront/pkg/api"
	"github.com/inventorymaster/storefront/pkg/auth"
	"github.com/inventorymaster/storefront/pkg/storage"
)

// Store persists users and their password hashes. Lookups of unknown users
// return an error wrapping storage.ErrNotFound; creating a user whose email
// is taken returns one wrapping storage.ErrConflict.
type Store interface {
	auth.PrincipalStore

	CreateUser(ctx context.Context, user *api.User, passwordHash string) error
	GetCredentialsByEmail(ctx context.Context, email string) (*storage.Credentials, error)
	GetCredentialsByID(ctx context.Context, id string) (*storage.Credentials, error)
	UpdateUser(ctx context.Context, user *api.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
