// Package users implements the storefront account operations: registration,
// login, profile updates and password changes. It issues the credentials
// that pkg/auth later verifies.
package users
