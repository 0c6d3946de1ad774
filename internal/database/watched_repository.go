package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"watchhive/models"
)

var ErrWatchedNotFound = errors.New("watched record not found")

// WatchedRepository persists the unified watched-content records.
type WatchedRepository struct {
	db *sql.DB
}

func NewWatchedRepository(db *sql.DB) *WatchedRepository {
	return &WatchedRepository{db: db}
}

// Upsert marks content watched. Re-marking bumps times_watched and
// refreshes date_watched instead of inserting a duplicate.
func (r *WatchedRepository) Upsert(userID string, contentID int64, mediaType string, now time.Time) (models.WatchedContent, error) {
	if _, err := r.db.Exec(
		`INSERT INTO watched_content (user_id, content_id, media_type, date_watched, times_watched)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT (user_id, content_id, media_type)
		 DO UPDATE SET times_watched = times_watched + 1, date_watched = excluded.date_watched`,
		userID, contentID, mediaType, now.UTC(),
	); err != nil {
		return models.WatchedContent{}, fmt.Errorf("upsert watched: %w", err)
	}
	return r.Get(userID, contentID, mediaType)
}

// Touch records that the content is watched without bumping the rewatch
// counter; used when progress reconciliation mirrors a series completion.
func (r *WatchedRepository) Touch(userID string, contentID int64, mediaType string, now time.Time) error {
	if _, err := r.db.Exec(
		`INSERT INTO watched_content (user_id, content_id, media_type, date_watched, times_watched)
		 VALUES (?, ?, ?, ?, 1)
		 ON CONFLICT (user_id, content_id, media_type)
		 DO UPDATE SET date_watched = excluded.date_watched`,
		userID, contentID, mediaType, now.UTC(),
	); err != nil {
		return fmt.Errorf("touch watched: %w", err)
	}
	return nil
}

// Get returns the record for (user, content, type).
func (r *WatchedRepository) Get(userID string, contentID int64, mediaType string) (models.WatchedContent, error) {
	var w models.WatchedContent
	err := r.db.QueryRow(
		`SELECT id, user_id, content_id, media_type, date_watched, times_watched
		 FROM watched_content WHERE user_id = ? AND content_id = ? AND media_type = ?`,
		userID, contentID, mediaType,
	).Scan(&w.ID, &w.UserID, &w.ContentID, &w.MediaType, &w.DateWatched, &w.TimesWatched)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WatchedContent{}, ErrWatchedNotFound
	}
	if err != nil {
		return models.WatchedContent{}, fmt.Errorf("get watched: %w", err)
	}
	return w, nil
}

// List returns a user's watched content, most recent first.
func (r *WatchedRepository) List(userID string) ([]models.WatchedContent, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, content_id, media_type, date_watched, times_watched
		 FROM watched_content WHERE user_id = ? ORDER BY date_watched DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list watched: %w", err)
	}
	defer rows.Close()

	var out []models.WatchedContent
	for rows.Next() {
		var w models.WatchedContent
		if err := rows.Scan(&w.ID, &w.UserID, &w.ContentID, &w.MediaType, &w.DateWatched, &w.TimesWatched); err != nil {
			return nil, fmt.Errorf("scan watched: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Delete removes a watched record.
func (r *WatchedRepository) Delete(userID string, contentID int64, mediaType string) error {
	res, err := r.db.Exec(
		`DELETE FROM watched_content WHERE user_id = ? AND content_id = ? AND media_type = ?`,
		userID, contentID, mediaType,
	)
	if err != nil {
		return fmt.Errorf("delete watched: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrWatchedNotFound
	}
	return nil
}
