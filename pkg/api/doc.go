// Package api defines the wire types shared by the storefront HTTP surface:
// the user resource, request bodies for the user endpoints, and the
// structured error envelope returned on every failure.
//
// The package performs no I/O. Password material never appears on [User];
// it is handled only by the storage adapters and the users service.
//
// Core types:
//   - [User]: the authenticated principal as seen by handlers and clients
//   - [RegisterRequest], [LoginRequest], [UpdateUserRequest], [ChangePasswordRequest]
//   - [APIError]: Structured error with type, code, param, and message
package api
