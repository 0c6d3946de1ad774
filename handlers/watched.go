package handlers

import (
	"errors"
	"net/http"

	"watchhive/internal/database"
	"watchhive/models"
	"watchhive/services/watched"
)

type watchedService interface {
	MarkWatched(userID string, req models.WatchedUpsert) (models.WatchedContent, error)
	Unmark(userID string, contentID int64, mediaType string) error
	List(userID string) ([]models.WatchedContent, error)
}

var _ watchedService = (*watched.Service)(nil)

type WatchedHandler struct {
	Service watchedService
}

func NewWatchedHandler(service watchedService) *WatchedHandler {
	return &WatchedHandler{Service: service}
}

func (h *WatchedHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.Service.List(userID)
	if err != nil {
		writeServerError(w, "watched", err)
		return
	}
	if items == nil {
		items = []models.WatchedContent{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *WatchedHandler) Mark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req models.WatchedUpsert
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := h.Service.MarkWatched(userID, req)
	if err != nil {
		if errors.Is(err, watched.ErrInvalidMediaType) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeServerError(w, "watched", err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *WatchedHandler) Unmark(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	contentID, mediaType, ok := contentPath(w, r)
	if !ok {
		return
	}

	if err := h.Service.Unmark(userID, contentID, mediaType); err != nil {
		switch {
		case errors.Is(err, watched.ErrInvalidMediaType):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, database.ErrWatchedNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			writeServerError(w, "watched", err)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
