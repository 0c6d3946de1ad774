package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"watchhive/internal/database"
	"watchhive/models"
	"watchhive/services/watchlist"
)

type watchlistService interface {
	Add(userID string, req models.WatchlistUpsert) (models.WatchlistItem, error)
	Remove(userID string, contentID int64, mediaType string) error
	List(userID string) ([]models.WatchlistItem, error)
}

var _ watchlistService = (*watchlist.Service)(nil)

type WatchlistHandler struct {
	Service watchlistService
}

func NewWatchlistHandler(service watchlistService) *WatchlistHandler {
	return &WatchlistHandler{Service: service}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.Service.List(userID)
	if err != nil {
		writeServerError(w, "watchlist", err)
		return
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.WatchlistUpsert
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.Service.Add(userID, req)
	if err != nil {
		switch {
		case errors.Is(err, watchlist.ErrContentIDRequired), errors.Is(err, watchlist.ErrInvalidMediaType):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			writeServerError(w, "watchlist", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	contentID, mediaType, ok := contentPath(w, r)
	if !ok {
		return
	}

	if err := h.Service.Remove(userID, contentID, mediaType); err != nil {
		switch {
		case errors.Is(err, watchlist.ErrInvalidMediaType):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, database.ErrWatchlistItemNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			writeServerError(w, "watchlist", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// contentPath resolves the {mediaType}/{contentID} path pair shared by
// the watched and watchlist delete routes.
func contentPath(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	vars := mux.Vars(r)
	mediaType := vars["mediaType"]
	if !models.ValidMediaType(mediaType) {
		http.Error(w, "invalid media type", http.StatusBadRequest)
		return 0, "", false
	}
	contentID, err := strconv.ParseInt(vars["contentID"], 10, 64)
	if err != nil || contentID <= 0 {
		http.Error(w, "content id must be a positive integer", http.StatusBadRequest)
		return 0, "", false
	}
	return contentID, mediaType, true
}
