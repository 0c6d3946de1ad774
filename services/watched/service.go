// Package watched manages the unified watched-content records shared by
// movies and series.
package watched

import (
	"errors"
	"fmt"
	"time"

	"watchhive/internal/database"
	"watchhive/models"
)

var ErrInvalidMediaType = errors.New("invalid media type")

// Service exposes watched-content reads and writes.
type Service struct {
	repo *database.WatchedRepository
	now  func() time.Time
}

func NewService(repo *database.WatchedRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// MarkWatched records the content as watched. Marking the same content
// again counts as a rewatch.
func (s *Service) MarkWatched(userID string, req models.WatchedUpsert) (models.WatchedContent, error) {
	if !models.ValidMediaType(req.MediaType) {
		return models.WatchedContent{}, fmt.Errorf("%w: %q", ErrInvalidMediaType, req.MediaType)
	}
	return s.repo.Upsert(userID, req.ContentID, req.MediaType, s.now())
}

// Unmark removes a watched record.
func (s *Service) Unmark(userID string, contentID int64, mediaType string) error {
	if !models.ValidMediaType(mediaType) {
		return fmt.Errorf("%w: %q", ErrInvalidMediaType, mediaType)
	}
	return s.repo.Delete(userID, contentID, mediaType)
}

// List returns the user's watched content, most recent first.
func (s *Service) List(userID string) ([]models.WatchedContent, error) {
	return s.repo.List(userID)
}

// IsWatched reports whether the user has a watched record for the content.
func (s *Service) IsWatched(userID string, contentID int64, mediaType string) (bool, error) {
	_, err := s.repo.Get(userID, contentID, mediaType)
	if errors.Is(err, database.ErrWatchedNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
