package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"watchhive/models"
)

// ProgressRepository persists series/season/episode watch progress. Rows
// are created lazily in parent-first order (series, then season, then
// episode marks) by the get-or-create accessors.
type ProgressRepository struct {
	db *sql.DB
}

func NewProgressRepository(db *sql.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetOrCreateSeriesProgress returns the progress row for (user, series),
// creating it with completed=false and last_watched=now when absent.
func (r *ProgressRepository) GetOrCreateSeriesProgress(userID string, seriesID int64, now time.Time) (models.SeriesProgress, error) {
	if sp, err := r.GetSeriesProgress(userID, seriesID); err != nil {
		return models.SeriesProgress{}, err
	} else if sp != nil {
		return *sp, nil
	}

	res, err := r.db.Exec(
		`INSERT INTO series_progress (user_id, series_id, completed, last_watched) VALUES (?, ?, 0, ?)`,
		userID, seriesID, now.UTC(),
	)
	if err != nil {
		return models.SeriesProgress{}, fmt.Errorf("insert series progress: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.SeriesProgress{}, fmt.Errorf("series progress id: %w", err)
	}

	return models.SeriesProgress{
		ID:          id,
		UserID:      userID,
		SeriesID:    seriesID,
		Completed:   false,
		LastWatched: now.UTC(),
	}, nil
}

// GetSeriesProgress returns the row for (user, series), or nil when the
// user has never interacted with the series.
func (r *ProgressRepository) GetSeriesProgress(userID string, seriesID int64) (*models.SeriesProgress, error) {
	row := r.db.QueryRow(
		`SELECT id, user_id, series_id, completed, last_watched FROM series_progress WHERE user_id = ? AND series_id = ?`,
		userID, seriesID,
	)
	sp, err := scanSeriesProgress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get series progress: %w", err)
	}
	return &sp, nil
}

// ListSeriesProgress returns every series the user tracks, most recently
// watched first.
func (r *ProgressRepository) ListSeriesProgress(userID string) ([]models.SeriesProgress, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, series_id, completed, last_watched FROM series_progress WHERE user_id = ? ORDER BY last_watched DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list series progress: %w", err)
	}
	defer rows.Close()

	var out []models.SeriesProgress
	for rows.Next() {
		sp, err := scanSeriesProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series progress: %w", err)
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// SetSeriesCompleted updates the explicit series-level completion flag.
func (r *ProgressRepository) SetSeriesCompleted(seriesProgressID int64, completed bool) error {
	if _, err := r.db.Exec(
		`UPDATE series_progress SET completed = ? WHERE id = ?`,
		boolToInt(completed), seriesProgressID,
	); err != nil {
		return fmt.Errorf("set series completed: %w", err)
	}
	return nil
}

// TouchLastWatched refreshes the series activity timestamp. Every
// progress write ends with this.
func (r *ProgressRepository) TouchLastWatched(seriesProgressID int64, now time.Time) error {
	if _, err := r.db.Exec(
		`UPDATE series_progress SET last_watched = ? WHERE id = ?`,
		now.UTC(), seriesProgressID,
	); err != nil {
		return fmt.Errorf("touch last watched: %w", err)
	}
	return nil
}

// GetOrCreateSeasonProgress returns the season row under a series
// progress row, creating it with completed=false when absent.
func (r *ProgressRepository) GetOrCreateSeasonProgress(seriesProgressID int64, seasonNumber int) (models.SeasonProgress, error) {
	if sp, err := r.GetSeasonProgress(seriesProgressID, seasonNumber); err != nil {
		return models.SeasonProgress{}, err
	} else if sp != nil {
		return *sp, nil
	}

	res, err := r.db.Exec(
		`INSERT INTO season_progress (series_progress_id, season_number, completed) VALUES (?, ?, 0)`,
		seriesProgressID, seasonNumber,
	)
	if err != nil {
		return models.SeasonProgress{}, fmt.Errorf("insert season progress: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.SeasonProgress{}, fmt.Errorf("season progress id: %w", err)
	}

	return models.SeasonProgress{
		ID:               id,
		SeriesProgressID: seriesProgressID,
		SeasonNumber:     seasonNumber,
	}, nil
}

// GetSeasonProgress returns the season row, or nil when absent.
func (r *ProgressRepository) GetSeasonProgress(seriesProgressID int64, seasonNumber int) (*models.SeasonProgress, error) {
	row := r.db.QueryRow(
		`SELECT id, series_progress_id, season_number, completed FROM season_progress WHERE series_progress_id = ? AND season_number = ?`,
		seriesProgressID, seasonNumber,
	)
	var sp models.SeasonProgress
	var completed int
	err := row.Scan(&sp.ID, &sp.SeriesProgressID, &sp.SeasonNumber, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get season progress: %w", err)
	}
	sp.Completed = completed != 0
	return &sp, nil
}

// ListSeasonProgress returns all season rows under a series progress row,
// in season order.
func (r *ProgressRepository) ListSeasonProgress(seriesProgressID int64) ([]models.SeasonProgress, error) {
	rows, err := r.db.Query(
		`SELECT id, series_progress_id, season_number, completed FROM season_progress WHERE series_progress_id = ? ORDER BY season_number`,
		seriesProgressID,
	)
	if err != nil {
		return nil, fmt.Errorf("list season progress: %w", err)
	}
	defer rows.Close()

	var out []models.SeasonProgress
	for rows.Next() {
		var sp models.SeasonProgress
		var completed int
		if err := rows.Scan(&sp.ID, &sp.SeriesProgressID, &sp.SeasonNumber, &completed); err != nil {
			return nil, fmt.Errorf("scan season progress: %w", err)
		}
		sp.Completed = completed != 0
		out = append(out, sp)
	}
	return out, rows.Err()
}

// SetSeasonCompleted updates the explicit season-level completion flag.
func (r *ProgressRepository) SetSeasonCompleted(seasonProgressID int64, completed bool) error {
	if _, err := r.db.Exec(
		`UPDATE season_progress SET completed = ? WHERE id = ?`,
		boolToInt(completed), seasonProgressID,
	); err != nil {
		return fmt.Errorf("set season completed: %w", err)
	}
	return nil
}

// SetEpisodeWatched inserts or deletes the mark for one episode. The
// current state is checked first so repeating a call is a no-op; the
// returned bool reports whether a row actually changed.
func (r *ProgressRepository) SetEpisodeWatched(seasonProgressID int64, episodeNumber int, watched bool, now time.Time) (bool, error) {
	var exists int
	err := r.db.QueryRow(
		`SELECT COUNT(1) FROM episode_marks WHERE season_progress_id = ? AND episode_number = ?`,
		seasonProgressID, episodeNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check episode mark: %w", err)
	}

	switch {
	case watched && exists == 0:
		if _, err := r.db.Exec(
			`INSERT INTO episode_marks (season_progress_id, episode_number, watched_at) VALUES (?, ?, ?)`,
			seasonProgressID, episodeNumber, now.UTC(),
		); err != nil {
			return false, fmt.Errorf("insert episode mark: %w", err)
		}
		return true, nil
	case !watched && exists > 0:
		if _, err := r.db.Exec(
			`DELETE FROM episode_marks WHERE season_progress_id = ? AND episode_number = ?`,
			seasonProgressID, episodeNumber,
		); err != nil {
			return false, fmt.Errorf("delete episode mark: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// ListEpisodeMarks returns the watched episodes for a season, in episode
// order.
func (r *ProgressRepository) ListEpisodeMarks(seasonProgressID int64) ([]models.EpisodeMark, error) {
	rows, err := r.db.Query(
		`SELECT id, season_progress_id, episode_number, watched_at FROM episode_marks WHERE season_progress_id = ? ORDER BY episode_number`,
		seasonProgressID,
	)
	if err != nil {
		return nil, fmt.Errorf("list episode marks: %w", err)
	}
	defer rows.Close()

	var out []models.EpisodeMark
	for rows.Next() {
		var m models.EpisodeMark
		if err := rows.Scan(&m.ID, &m.SeasonProgressID, &m.EpisodeNumber, &m.WatchedAt); err != nil {
			return nil, fmt.Errorf("scan episode mark: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ReplaceEpisodeMarks atomically swaps a season's marks for exactly the
// provided episode numbers.
func (r *ProgressRepository) ReplaceEpisodeMarks(seasonProgressID int64, episodeNumbers []int, now time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace marks: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM episode_marks WHERE season_progress_id = ?`, seasonProgressID); err != nil {
		return fmt.Errorf("clear episode marks: %w", err)
	}
	for _, ep := range episodeNumbers {
		if _, err := tx.Exec(
			`INSERT INTO episode_marks (season_progress_id, episode_number, watched_at) VALUES (?, ?, ?)`,
			seasonProgressID, ep, now.UTC(),
		); err != nil {
			return fmt.Errorf("insert episode mark %d: %w", ep, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace marks: %w", err)
	}
	return nil
}

// ClearEpisodeMarks deletes every mark under a season.
func (r *ProgressRepository) ClearEpisodeMarks(seasonProgressID int64) error {
	if _, err := r.db.Exec(`DELETE FROM episode_marks WHERE season_progress_id = ?`, seasonProgressID); err != nil {
		return fmt.Errorf("clear episode marks: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeriesProgress(row rowScanner) (models.SeriesProgress, error) {
	var sp models.SeriesProgress
	var completed int
	if err := row.Scan(&sp.ID, &sp.UserID, &sp.SeriesID, &completed, &sp.LastWatched); err != nil {
		return models.SeriesProgress{}, err
	}
	sp.Completed = completed != 0
	return sp, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
