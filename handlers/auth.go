package handlers

import (
	"errors"
	"net/http"
	"strings"

	"watchhive/internal/auth"
	"watchhive/internal/database"
	"watchhive/models"
	"watchhive/services/accounts"
	"watchhive/services/sessions"
)

type accountService interface {
	Signup(req accounts.SignupRequest) (models.Account, error)
	Login(email, password string) (models.Account, error)
	Profile(userID string) (models.Profile, error)
	Delete(userID string) error
}

var _ accountService = (*accounts.Service)(nil)

type sessionService interface {
	Create(identity models.Identity) string
	Resolve(token string) (models.Identity, error)
	Revoke(token string)
	RevokeUser(userID string)
}

var _ sessionService = (*sessions.Service)(nil)

type AuthHandler struct {
	Accounts accountService
	Sessions sessionService
}

func NewAuthHandler(accountsSvc accountService, sessionsSvc sessionService) *AuthHandler {
	return &AuthHandler{Accounts: accountsSvc, Sessions: sessionsSvc}
}

type loginResponse struct {
	Token   string         `json:"token"`
	Account models.Account `json:"account"`
	Profile models.Profile `json:"profile"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req accounts.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.Accounts.Signup(req)
	if err != nil {
		switch {
		case errors.Is(err, accounts.ErrEmailRequired), errors.Is(err, accounts.ErrPasswordTooShort):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, database.ErrEmailTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			writeServerError(w, "auth", err)
		}
		return
	}

	h.respondWithSession(w, account, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.Accounts.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		writeServerError(w, "auth", err)
		return
	}

	h.respondWithSession(w, account, http.StatusOK)
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, account models.Account, status int) {
	token := h.Sessions.Create(models.Identity{UserID: account.ID, Email: account.Email, Role: account.Role})
	profile, err := h.Accounts.Profile(account.ID)
	if err != nil {
		writeServerError(w, "auth", err)
		return
	}
	writeJSON(w, status, loginResponse{Token: token, Account: account, Profile: profile})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := BearerToken(r); token != "" {
		h.Sessions.Revoke(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	profile, err := h.Accounts.Profile(identity.UserID)
	if err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeServerError(w, "auth", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		models.Identity
		Profile models.Profile `json:"profile"`
	}{Identity: identity, Profile: profile})
}

// DeleteAccount removes the authenticated user's account and revokes all
// of their sessions. Every owned row cascades away in the database.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFrom(r)
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.Accounts.Delete(identity.UserID); err != nil {
		if errors.Is(err, database.ErrAccountNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeServerError(w, "auth", err)
		return
	}
	h.Sessions.RevokeUser(identity.UserID)
	w.WriteHeader(http.StatusNoContent)
}

// BearerToken extracts the opaque token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
