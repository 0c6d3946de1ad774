// Package metadata fronts the upstream title catalogue. All outbound
// traffic goes through one throttled, retrying client; failures surface
// as ErrUpstream so callers with a degrade path can recover locally.
package metadata

import (
	"context"
	"errors"
	"time"

	"watchhive/models"
)

var (
	// ErrUpstream wraps any catalogue failure after retries are exhausted.
	ErrUpstream = errors.New("catalogue unavailable")
	// ErrTitleNotFound means the catalogue has no entry for the id.
	ErrTitleNotFound = errors.New("title not found")
)

// Config holds upstream catalogue settings.
type Config struct {
	BaseURL        string
	APIKey         string
	Language       string
	RequestTimeout time.Duration
}

// Service is the catalogue gateway used by progress reconciliation and
// recommendations.
type Service struct {
	client *tmdbClient
}

func NewService(cfg Config) *Service {
	return &Service{
		client: newTMDBClient(cfg.BaseURL, cfg.APIKey, cfg.Language, cfg.RequestTimeout),
	}
}

// SeriesDetails returns the series record with its season summaries.
// Season summaries carry air dates but not episode lists.
func (s *Service) SeriesDetails(ctx context.Context, seriesID int64) (*models.SeriesDetails, error) {
	return s.client.seriesDetails(ctx, seriesID)
}

// Season returns one season with its full episode list.
func (s *Service) Season(ctx context.Context, seriesID int64, seasonNumber int) (*models.SeriesSeason, error) {
	return s.client.season(ctx, seriesID, seasonNumber)
}

// Recommendations returns the catalogue's related titles for an id.
func (s *Service) Recommendations(ctx context.Context, mediaType string, id int64) ([]models.Title, error) {
	return s.client.recommendations(ctx, mediaType, id)
}

// Search runs a free-text title search within one media type.
func (s *Service) Search(ctx context.Context, mediaType, query string) ([]models.Title, error) {
	return s.client.search(ctx, mediaType, query)
}
