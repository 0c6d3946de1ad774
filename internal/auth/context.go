// Package auth carries the authenticated identity through the request
// context.
package auth

import (
	"context"
	"net/http"

	"watchhive/models"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a request whose context carries the identity.
func WithIdentity(r *http.Request, identity models.Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, identity))
}

// IdentityFrom retrieves the authenticated identity from the request
// context. ok is false on unauthenticated requests.
func IdentityFrom(r *http.Request) (models.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(models.Identity)
	return identity, ok
}

// CanAccessUser reports whether the request's identity may act on the
// given user's resources: the user themselves, or an admin.
func CanAccessUser(r *http.Request, userID string) bool {
	identity, ok := IdentityFrom(r)
	if !ok {
		return false
	}
	return identity.UserID == userID || identity.IsAdmin()
}
