package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"watchhive/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedAccount(t *testing.T, db *DB, userID string) {
	t.Helper()
	now := time.Now()
	repo := NewAccountRepository(db.Connection())
	err := repo.CreateWithProfile(
		models.Account{ID: userID, Email: userID + "@example.com", PasswordHash: "x", Role: models.RoleUser, CreatedAt: now, UpdatedAt: now},
		models.Profile{UserID: userID, DisplayName: userID, CreatedAt: now, UpdatedAt: now},
	)
	require.NoError(t, err)
}

func TestGetOrCreateSeriesProgress(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	repo := NewProgressRepository(db.Connection())
	now := time.Now()

	sp, err := repo.GetOrCreateSeriesProgress("u1", 100, now)
	require.NoError(t, err)
	require.NotZero(t, sp.ID)
	require.False(t, sp.Completed)

	again, err := repo.GetOrCreateSeriesProgress("u1", 100, now.Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, sp.ID, again.ID, "second call must reuse the row")
}

func TestGetSeriesProgressAbsent(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	repo := NewProgressRepository(db.Connection())

	sp, err := repo.GetSeriesProgress("u1", 999)
	require.NoError(t, err)
	require.Nil(t, sp)
}

func TestSetEpisodeWatchedIdempotent(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	repo := NewProgressRepository(db.Connection())
	now := time.Now()

	series, err := repo.GetOrCreateSeriesProgress("u1", 100, now)
	require.NoError(t, err)
	season, err := repo.GetOrCreateSeasonProgress(series.ID, 1)
	require.NoError(t, err)

	changed, err := repo.SetEpisodeWatched(season.ID, 3, true, now)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = repo.SetEpisodeWatched(season.ID, 3, true, now)
	require.NoError(t, err)
	require.False(t, changed, "repeat mark must be a no-op")

	marks, err := repo.ListEpisodeMarks(season.ID)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	require.Equal(t, 3, marks[0].EpisodeNumber)

	changed, err = repo.SetEpisodeWatched(season.ID, 3, false, now)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = repo.SetEpisodeWatched(season.ID, 3, false, now)
	require.NoError(t, err)
	require.False(t, changed, "repeat unmark must be a no-op")
}

func TestReplaceEpisodeMarks(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	repo := NewProgressRepository(db.Connection())
	now := time.Now()

	series, err := repo.GetOrCreateSeriesProgress("u1", 100, now)
	require.NoError(t, err)
	season, err := repo.GetOrCreateSeasonProgress(series.ID, 2)
	require.NoError(t, err)

	_, err = repo.SetEpisodeWatched(season.ID, 9, true, now)
	require.NoError(t, err)

	require.NoError(t, repo.ReplaceEpisodeMarks(season.ID, []int{1, 2, 3}, now))

	marks, err := repo.ListEpisodeMarks(season.ID)
	require.NoError(t, err)
	var nums []int
	for _, m := range marks {
		nums = append(nums, m.EpisodeNumber)
	}
	require.Equal(t, []int{1, 2, 3}, nums)

	require.NoError(t, repo.ClearEpisodeMarks(season.ID))
	marks, err = repo.ListEpisodeMarks(season.ID)
	require.NoError(t, err)
	require.Empty(t, marks)
}

func TestCompletionFlags(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	repo := NewProgressRepository(db.Connection())
	now := time.Now()

	series, err := repo.GetOrCreateSeriesProgress("u1", 100, now)
	require.NoError(t, err)
	season, err := repo.GetOrCreateSeasonProgress(series.ID, 1)
	require.NoError(t, err)

	require.NoError(t, repo.SetSeasonCompleted(season.ID, true))
	got, err := repo.GetSeasonProgress(series.ID, 1)
	require.NoError(t, err)
	require.True(t, got.Completed)

	require.NoError(t, repo.SetSeriesCompleted(series.ID, true))
	sp, err := repo.GetSeriesProgress("u1", 100)
	require.NoError(t, err)
	require.True(t, sp.Completed)
}

func TestListSeriesProgressOrder(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	repo := NewProgressRepository(db.Connection())
	base := time.Now()

	older, err := repo.GetOrCreateSeriesProgress("u1", 100, base.Add(-time.Hour))
	require.NoError(t, err)
	newer, err := repo.GetOrCreateSeriesProgress("u1", 200, base)
	require.NoError(t, err)

	all, err := repo.ListSeriesProgress("u1")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, newer.SeriesID, all[0].SeriesID)

	require.NoError(t, repo.TouchLastWatched(older.ID, base.Add(time.Hour)))
	all, err = repo.ListSeriesProgress("u1")
	require.NoError(t, err)
	require.Equal(t, older.SeriesID, all[0].SeriesID, "touch must reorder")
}

func TestAccountDeleteCascadesProgress(t *testing.T) {
	db := setupTestDB(t)
	seedAccount(t, db, "u1")
	accounts := NewAccountRepository(db.Connection())
	repo := NewProgressRepository(db.Connection())
	now := time.Now()

	series, err := repo.GetOrCreateSeriesProgress("u1", 100, now)
	require.NoError(t, err)
	season, err := repo.GetOrCreateSeasonProgress(series.ID, 1)
	require.NoError(t, err)
	_, err = repo.SetEpisodeWatched(season.ID, 1, true, now)
	require.NoError(t, err)

	require.NoError(t, accounts.Delete("u1"))

	all, err := repo.ListSeriesProgress("u1")
	require.NoError(t, err)
	require.Empty(t, all)
	marks, err := repo.ListEpisodeMarks(season.ID)
	require.NoError(t, err)
	require.Empty(t, marks)
}
