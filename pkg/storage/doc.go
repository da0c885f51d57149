// Package storage provides utilities shared across storage adapter
// implementations: sentinel errors and the credential record type.
//
// Storage adapters (memory, postgres) implement users.Store, defined in
// pkg/users, and auth.PrincipalStore, defined in pkg/auth. This package
// contains only shared types, not the interfaces themselves.
package storage
