// Package contextkey defines the typed keys used to pass per-request
// values through the request context.
package contextkey

type key string

// UserIDKey carries the authenticated user's id, injected by the auth
// guard middleware after token verification.
const UserIDKey = key("userID")
