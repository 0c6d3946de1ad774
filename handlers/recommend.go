package handlers

import (
	"context"
	"errors"
	"net/http"

	"watchhive/models"
	"watchhive/services/recommend"
)

type recommendService interface {
	ForSeeds(ctx context.Context, seeds []models.RecommendationSeed) ([]models.Title, error)
}

var _ recommendService = (*recommend.Service)(nil)

type RecommendHandler struct {
	Service recommendService
}

func NewRecommendHandler(service recommendService) *RecommendHandler {
	return &RecommendHandler{Service: service}
}

func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	var req models.RecommendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	titles, err := h.Service.ForSeeds(r.Context(), req.Seeds)
	if err != nil {
		if errors.Is(err, recommend.ErrNoSeeds) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeServerError(w, "recommend", err)
		return
	}
	if titles == nil {
		titles = []models.Title{}
	}
	writeJSON(w, http.StatusOK, titles)
}
