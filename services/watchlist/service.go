// Package watchlist manages per-user wishlist entries.
package watchlist

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"watchhive/internal/database"
	"watchhive/models"
)

var (
	ErrUserIDRequired    = errors.New("user id is required")
	ErrContentIDRequired = errors.New("content id is required")
	ErrInvalidMediaType  = errors.New("invalid media type")
)

// Service manages persistence and retrieval of user watchlist items.
type Service struct {
	repo *database.WatchlistRepository
	now  func() time.Time
}

func NewService(repo *database.WatchlistRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Add puts content on the user's watchlist. Re-adding refreshes the
// cached display fields without duplicating the entry.
func (s *Service) Add(userID string, req models.WatchlistUpsert) (models.WatchlistItem, error) {
	if strings.TrimSpace(userID) == "" {
		return models.WatchlistItem{}, ErrUserIDRequired
	}
	if req.ContentID == 0 {
		return models.WatchlistItem{}, ErrContentIDRequired
	}
	if !models.ValidMediaType(req.MediaType) {
		return models.WatchlistItem{}, fmt.Errorf("%w: %q", ErrInvalidMediaType, req.MediaType)
	}
	return s.repo.Add(userID, req, s.now())
}

// Remove deletes an entry; database.ErrWatchlistItemNotFound when absent.
func (s *Service) Remove(userID string, contentID int64, mediaType string) error {
	if !models.ValidMediaType(mediaType) {
		return fmt.Errorf("%w: %q", ErrInvalidMediaType, mediaType)
	}
	return s.repo.Remove(userID, contentID, mediaType)
}

// List returns the user's watchlist, newest first.
func (s *Service) List(userID string) ([]models.WatchlistItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserIDRequired
	}
	return s.repo.List(userID)
}
