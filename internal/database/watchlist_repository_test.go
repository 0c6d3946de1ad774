package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"watchhive/models"
)

func TestWatchlistAddIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	repo := NewWatchlistRepository(db.Connection())
	now := time.Now()

	first, err := repo.Add("u1", models.WatchlistUpsert{ContentID: 42, MediaType: models.MediaTypeMovie, Title: "Heat"}, now)
	require.NoError(t, err)

	again, err := repo.Add("u1", models.WatchlistUpsert{ContentID: 42, MediaType: models.MediaTypeMovie, Title: "Heat (1995)"}, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID, "re-add must not duplicate")
	require.Equal(t, "Heat (1995)", again.Title, "re-add refreshes display fields")
	require.WithinDuration(t, first.AddedAt, again.AddedAt, time.Second, "original added_at is kept")

	list, err := repo.List("u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestWatchlistListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	repo := NewWatchlistRepository(db.Connection())
	base := time.Now()

	_, err := repo.Add("u1", models.WatchlistUpsert{ContentID: 1, MediaType: models.MediaTypeMovie}, base.Add(-time.Hour))
	require.NoError(t, err)
	_, err = repo.Add("u1", models.WatchlistUpsert{ContentID: 2, MediaType: models.MediaTypeTV}, base)
	require.NoError(t, err)

	list, err := repo.List("u1")
	require.NoError(t, err)
	require.Equal(t, int64(2), list[0].ContentID)
}

func TestWatchlistRemove(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	repo := NewWatchlistRepository(db.Connection())

	_, err := repo.Add("u1", models.WatchlistUpsert{ContentID: 1, MediaType: models.MediaTypeMovie}, time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.Remove("u1", 1, models.MediaTypeMovie))
	require.ErrorIs(t, repo.Remove("u1", 1, models.MediaTypeMovie), ErrWatchlistItemNotFound)
}
