package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"watchhive/models"
)

var ErrWatchlistItemNotFound = errors.New("watchlist item not found")

// WatchlistRepository persists per-user watchlist entries.
type WatchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Add inserts a watchlist entry. Re-adding the same content refreshes
// the cached title and poster but keeps the original added_at.
func (r *WatchlistRepository) Add(userID string, item models.WatchlistUpsert, now time.Time) (models.WatchlistItem, error) {
	if _, err := r.db.Exec(
		`INSERT INTO watchlist_items (user_id, content_id, media_type, title, poster_url, added_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, media_type, content_id)
		 DO UPDATE SET title = excluded.title, poster_url = excluded.poster_url`,
		userID, item.ContentID, item.MediaType, item.Title, item.PosterURL, now.UTC(),
	); err != nil {
		return models.WatchlistItem{}, fmt.Errorf("add watchlist item: %w", err)
	}
	return r.get(userID, item.ContentID, item.MediaType)
}

func (r *WatchlistRepository) get(userID string, contentID int64, mediaType string) (models.WatchlistItem, error) {
	var it models.WatchlistItem
	err := r.db.QueryRow(
		`SELECT id, user_id, content_id, media_type, title, poster_url, added_at
		 FROM watchlist_items WHERE user_id = ? AND content_id = ? AND media_type = ?`,
		userID, contentID, mediaType,
	).Scan(&it.ID, &it.UserID, &it.ContentID, &it.MediaType, &it.Title, &it.PosterURL, &it.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchlistItem{}, ErrWatchlistItemNotFound
	}
	if err != nil {
		return models.WatchlistItem{}, fmt.Errorf("get watchlist item: %w", err)
	}
	return it, nil
}

// List returns a user's watchlist, newest first.
func (r *WatchlistRepository) List(userID string) ([]models.WatchlistItem, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, content_id, media_type, title, poster_url, added_at
		 FROM watchlist_items WHERE user_id = ? ORDER BY added_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var out []models.WatchlistItem
	for rows.Next() {
		var it models.WatchlistItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ContentID, &it.MediaType, &it.Title, &it.PosterURL, &it.AddedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Remove deletes a watchlist entry.
func (r *WatchlistRepository) Remove(userID string, contentID int64, mediaType string) error {
	res, err := r.db.Exec(
		`DELETE FROM watchlist_items WHERE user_id = ? AND content_id = ? AND media_type = ?`,
		userID, contentID, mediaType,
	)
	if err != nil {
		return fmt.Errorf("remove watchlist item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrWatchlistItemNotFound
	}
	return nil
}
