package auth

import (
	"context"

	"github.com/inventorymaster/storefront/pkg/api"
)

// userKey is a private type for the user context key.
type userKey struct{}

// SetUser stores the authenticated user in the context.
func SetUser(ctx context.Context, u *api.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext retrieves the authenticated user.
// Returns nil if the request did not pass through the auth middleware.
func UserFromContext(ctx context.Context) *api.User {
	if v, ok := ctx.Value(userKey{}).(*api.User); ok {
		return v
	}
	return nil
}
