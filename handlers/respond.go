package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"watchhive/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeServerError logs the real error and sends a generic body so
// internal details never reach the client.
func writeServerError(w http.ResponseWriter, component string, err error) {
	log.Printf("[%s] internal error: %v", component, err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// requireUser resolves the {userID} path variable and verifies the
// caller may act on that user's resources.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := mux.Vars(r)["userID"]
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return "", false
	}
	if _, ok := auth.IdentityFrom(r); !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return "", false
	}
	if !auth.CanAccessUser(r, userID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return userID, true
}
