// Package api wires handlers onto the HTTP router: CORS, auth
// middleware, per-IP rate limiting on the credential endpoints, and the
// /api route table.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"watchhive/handlers"
	"watchhive/services/sessions"
)

// Handlers bundles everything Register mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Progress  *handlers.ProgressHandler
	Watched   *handlers.WatchedHandler
	Watchlist *handlers.WatchlistHandler
	Lists     *handlers.ListsHandler
	Recommend *handlers.RecommendHandler
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewRouter constructs the base router with CORS and the health check.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	return r
}

// Register mounts every route. Signup, login and share-token resolution
// are public; everything else sits behind the session middleware.
func Register(r *mux.Router, h Handlers, sessionsSvc *sessions.Service) {
	api := r.PathPrefix("/api").Subrouter()

	// 5 attempts per minute per IP on the credential endpoints.
	authLimiter := NewIPRateLimiter(rate.Every(12*time.Second), 5)

	api.HandleFunc("/auth/signup", rateLimited(authLimiter, h.Auth.Signup)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/login", rateLimited(authLimiter, h.Auth.Login)).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/lists/shared/{token}", h.Lists.GetShared).Methods(http.MethodGet, http.MethodOptions)

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware(sessionsSvc))

	authed.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/auth/me", h.Auth.Me).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/auth/account", h.Auth.DeleteAccount).Methods(http.MethodDelete, http.MethodOptions)

	authed.HandleFunc("/users/{userID}/progress", h.Progress.ListAll).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/progress/series/{seriesID}", h.Progress.GetSeries).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/progress/series/{seriesID}", h.Progress.MarkSeries).Methods(http.MethodPut, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/progress/series/{seriesID}/seasons/{seasonNumber}", h.Progress.MarkSeason).Methods(http.MethodPut, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/progress/series/{seriesID}/seasons/{seasonNumber}/episodes/{episodeNumber}", h.Progress.MarkEpisode).Methods(http.MethodPut, http.MethodOptions)

	authed.HandleFunc("/users/{userID}/watched", h.Watched.List).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/watched", h.Watched.Mark).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/watched/{mediaType}/{contentID}", h.Watched.Unmark).Methods(http.MethodDelete, http.MethodOptions)

	authed.HandleFunc("/users/{userID}/watchlist", h.Watchlist.List).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/watchlist", h.Watchlist.Add).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/watchlist/{mediaType}/{contentID}", h.Watchlist.Remove).Methods(http.MethodDelete, http.MethodOptions)

	authed.HandleFunc("/users/{userID}/lists", h.Lists.ListAll).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/lists", h.Lists.Create).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/lists/{listID}", h.Lists.Get).Methods(http.MethodGet, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/lists/{listID}", h.Lists.Rename).Methods(http.MethodPatch, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/lists/{listID}", h.Lists.Delete).Methods(http.MethodDelete, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/lists/{listID}/items", h.Lists.AddItem).Methods(http.MethodPost, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/lists/{listID}/items/{mediaType}/{contentID}", h.Lists.RemoveItem).Methods(http.MethodDelete, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/lists/{listID}/collaborators/{collabID}", h.Lists.AddCollaborator).Methods(http.MethodPut, http.MethodOptions)
	authed.HandleFunc("/users/{userID}/lists/{listID}/collaborators/{collabID}", h.Lists.RemoveCollaborator).Methods(http.MethodDelete, http.MethodOptions)

	authed.HandleFunc("/users/{userID}/recommendations", h.Recommend.Recommend).Methods(http.MethodPost, http.MethodOptions)
}
