package api

import (
	"net/http"

	"watchhive/handlers"
	"watchhive/internal/auth"
	"watchhive/models"
)

type tokenResolver interface {
	Resolve(token string) (models.Identity, error)
}

// authMiddleware resolves the bearer token to an identity and attaches
// it to the request context. Requests without a valid token are rejected
// before reaching any handler.
func authMiddleware(sessions tokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := handlers.BearerToken(r)
			if token == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			identity, err := sessions.Resolve(token)
			if err != nil {
				http.Error(w, "invalid or expired session", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, auth.WithIdentity(r, identity))
		})
	}
}
