// Package auth authenticates storefront requests.
//
// A request carries a bearer credential (an HS256 token encoding a user id)
// in the "token" cookie, an "Authorization: Bearer" header, or an
// "x-access-token" header. The Authenticator extracts the first non-empty
// credential, verifies it, and resolves the encoded id to a user through a
// PrincipalStore. Tokens close to expiry are renewed by setting a fresh
// cookie on the response.
//
// Auth is implemented as HTTP middleware. Handlers behind it read the
// resolved user with UserFromContext.
package auth
