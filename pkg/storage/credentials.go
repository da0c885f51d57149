package storage

import "github.com/inventorymaster/storefront/pkg/api"

// Credentials pairs a user with its stored password hash. It is returned
// only by credential lookups used for login and password changes, so the
// hash never travels with the principal through the request pipeline.
type Credentials struct {
	User         *api.User
	PasswordHash string
}
