package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"watchhive/models"
	"watchhive/services/progress"
)

type progressService interface {
	MarkEpisode(ctx context.Context, userID string, seriesID int64, seasonNumber, episodeNumber int, watched bool) error
	MarkSeason(ctx context.Context, userID string, seriesID int64, seasonNumber int, completed bool, fallbackEps []models.SeriesEpisode) error
	MarkSeries(ctx context.Context, userID string, seriesID int64, completed bool, seasonsFallback map[int][]models.SeriesEpisode) error
	GetSeriesProgress(userID string, seriesID int64) (models.SeriesProgressView, error)
	ListAllProgress(userID string) ([]models.SeriesProgressView, error)
}

var _ progressService = (*progress.Service)(nil)

type ProgressHandler struct {
	Service progressService
}

func NewProgressHandler(service progressService) *ProgressHandler {
	return &ProgressHandler{Service: service}
}

func (h *ProgressHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	views, err := h.Service.ListAllProgress(userID)
	if err != nil {
		writeServerError(w, "progress", err)
		return
	}
	if views == nil {
		views = []models.SeriesProgressView{}
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *ProgressHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	seriesID, ok := pathInt64(w, r, "seriesID")
	if !ok {
		return
	}

	view, err := h.Service.GetSeriesProgress(userID, seriesID)
	if err != nil {
		writeServerError(w, "progress", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *ProgressHandler) MarkSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	seriesID, ok := pathInt64(w, r, "seriesID")
	if !ok {
		return
	}

	var req models.MarkSeriesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Service.MarkSeries(r.Context(), userID, seriesID, req.Completed, req.SeasonsFallback); err != nil {
		writeServerError(w, "progress", err)
		return
	}
	h.respondWithView(w, userID, seriesID)
}

func (h *ProgressHandler) MarkSeason(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	seriesID, ok := pathInt64(w, r, "seriesID")
	if !ok {
		return
	}
	seasonNumber, ok := pathInt(w, r, "seasonNumber")
	if !ok {
		return
	}

	var req models.MarkSeasonRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Service.MarkSeason(r.Context(), userID, seriesID, seasonNumber, req.Completed, req.EpisodesFallback); err != nil {
		writeServerError(w, "progress", err)
		return
	}
	h.respondWithView(w, userID, seriesID)
}

func (h *ProgressHandler) MarkEpisode(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	seriesID, ok := pathInt64(w, r, "seriesID")
	if !ok {
		return
	}
	seasonNumber, ok := pathInt(w, r, "seasonNumber")
	if !ok {
		return
	}
	episodeNumber, ok := pathInt(w, r, "episodeNumber")
	if !ok {
		return
	}

	var req models.MarkEpisodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.Service.MarkEpisode(r.Context(), userID, seriesID, seasonNumber, episodeNumber, req.Watched)
	if err != nil {
		switch {
		case errors.Is(err, progress.ErrEpisodeNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, progress.ErrEpisodeUnreleased):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			writeServerError(w, "progress", err)
		}
		return
	}
	h.respondWithView(w, userID, seriesID)
}

func (h *ProgressHandler) respondWithView(w http.ResponseWriter, userID string, seriesID int64) {
	view, err := h.Service.GetSeriesProgress(userID, seriesID)
	if err != nil {
		writeServerError(w, "progress", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || v <= 0 {
		http.Error(w, name+" must be a positive integer", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || v < 0 {
		http.Error(w, name+" must be a non-negative integer", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}
