// Package transport provides the HTTP plumbing shared by the storefront
// handlers: JSON and error response writers, and the middleware chain for
// request IDs, panic recovery and structured request logging via log/slog.
//
// Route wiring lives in the transport/http subpackage.
package transport
