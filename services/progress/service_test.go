package progress

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"watchhive/internal/database"
	"watchhive/models"
	"watchhive/services/metadata"
)

// fakeCatalogue is a hand-rolled catalogue double: seasons keyed by
// (seriesID, seasonNumber), with switchable failure modes.
type fakeCatalogue struct {
	details    map[int64]*models.SeriesDetails
	seasons    map[int64]map[int]*models.SeriesSeason
	detailsErr error
	seasonErr  map[int]error
}

func newFakeCatalogue() *fakeCatalogue {
	return &fakeCatalogue{
		details:   map[int64]*models.SeriesDetails{},
		seasons:   map[int64]map[int]*models.SeriesSeason{},
		seasonErr: map[int]error{},
	}
}

func (f *fakeCatalogue) SeriesDetails(_ context.Context, seriesID int64) (*models.SeriesDetails, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	if d, ok := f.details[seriesID]; ok {
		return d, nil
	}
	return nil, metadata.ErrTitleNotFound
}

func (f *fakeCatalogue) Season(_ context.Context, seriesID int64, seasonNumber int) (*models.SeriesSeason, error) {
	if err, ok := f.seasonErr[seasonNumber]; ok {
		return nil, err
	}
	if bySeason, ok := f.seasons[seriesID]; ok {
		if season, ok := bySeason[seasonNumber]; ok {
			return season, nil
		}
	}
	return nil, metadata.ErrTitleNotFound
}

func (f *fakeCatalogue) addSeason(seriesID int64, season models.SeriesSeason) {
	if f.seasons[seriesID] == nil {
		f.seasons[seriesID] = map[int]*models.SeriesSeason{}
	}
	s := season
	f.seasons[seriesID][season.SeasonNumber] = &s
}

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

func episodes(airDates ...string) []models.SeriesEpisode {
	out := make([]models.SeriesEpisode, len(airDates))
	for i, d := range airDates {
		out[i] = models.SeriesEpisode{EpisodeNumber: i + 1, AirDate: d}
	}
	return out
}

type fixture struct {
	svc       *Service
	catalogue *fakeCatalogue
	store     *database.ProgressRepository
	watched   *database.WatchedRepository
}

func setup(t *testing.T) fixture {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	accounts := database.NewAccountRepository(db.Connection())
	require.NoError(t, accounts.CreateWithProfile(
		models.Account{ID: "u1", Email: "u1@example.com", PasswordHash: "x", Role: models.RoleUser, CreatedAt: testNow, UpdatedAt: testNow},
		models.Profile{UserID: "u1", DisplayName: "u1", CreatedAt: testNow, UpdatedAt: testNow},
	))

	cat := newFakeCatalogue()
	store := database.NewProgressRepository(db.Connection())
	watched := database.NewWatchedRepository(db.Connection())
	svc := NewService(cat, store, watched)
	svc.now = func() time.Time { return testNow }
	return fixture{svc: svc, catalogue: cat, store: store, watched: watched}
}

func (f fixture) view(t *testing.T, seriesID int64) models.SeriesProgressView {
	t.Helper()
	view, err := f.svc.GetSeriesProgress("u1", seriesID)
	require.NoError(t, err)
	return view
}

func TestMarkEpisodeHappyPath(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 1, AirDate: "2024-01-01",
		Episodes: episodes("2024-01-01", "2024-01-08"),
	})

	require.NoError(t, f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 2, true))

	view := f.view(t, 100)
	require.Equal(t, []int{2}, view.Seasons[1].Episodes)
	require.False(t, view.Seasons[1].Completed)
	require.False(t, view.Completed)
}

func TestMarkEpisodeUnknownEpisode(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 1, Episodes: episodes("2024-01-01"),
	})

	err := f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 9, true)
	require.ErrorIs(t, err, ErrEpisodeNotFound)

	view := f.view(t, 100)
	require.Empty(t, view.Seasons, "rejected mark must not create rows")
}

func TestMarkEpisodeUnknownSeason(t *testing.T) {
	f := setup(t)

	err := f.svc.MarkEpisode(context.Background(), "u1", 100, 7, 1, true)
	require.ErrorIs(t, err, ErrEpisodeNotFound)
}

func TestMarkEpisodeUnreleased(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 1, Episodes: episodes("2024-04-01", "2024-06-01"),
	})

	err := f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 2, true)
	require.ErrorIs(t, err, ErrEpisodeUnreleased)
}

func TestMarkEpisodeNoAirDateAllowed(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 1, Episodes: episodes(""),
	})

	require.NoError(t, f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 1, true))
}

func TestMarkEpisodeCatalogueDownFailsOpen(t *testing.T) {
	f := setup(t)
	f.catalogue.seasonErr[1] = metadata.ErrUpstream

	require.NoError(t, f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 3, true))
	view := f.view(t, 100)
	require.Equal(t, []int{3}, view.Seasons[1].Episodes)
}

func TestMarkEpisodeIdempotent(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 1, Episodes: episodes("2024-01-01"),
	})

	require.NoError(t, f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 1, true))
	require.NoError(t, f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 1, true))

	view := f.view(t, 100)
	require.Equal(t, []int{1}, view.Seasons[1].Episodes)
}

func TestUnmarkEpisodeBreaksCompletion(t *testing.T) {
	f := setup(t)
	f.catalogue.details[100] = &models.SeriesDetails{
		Seasons: []models.SeriesSeason{{SeasonNumber: 1, AirDate: "2024-01-01"}},
	}
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 1, AirDate: "2024-01-01",
		Episodes: episodes("2024-01-01", "2024-01-08"),
	})

	require.NoError(t, f.svc.MarkSeries(context.Background(), "u1", 100, true, nil))
	view := f.view(t, 100)
	require.True(t, view.Completed)
	require.True(t, view.Seasons[1].Completed)

	_, err := f.watched.Get("u1", 100, models.MediaTypeTV)
	require.NoError(t, err, "completed series must have a watched record")

	require.NoError(t, f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 2, false))

	view = f.view(t, 100)
	require.False(t, view.Completed, "series completion is non-sticky")
	require.False(t, view.Seasons[1].Completed, "season completion is non-sticky")
	require.Equal(t, []int{1}, view.Seasons[1].Episodes)

	_, err = f.watched.Get("u1", 100, models.MediaTypeTV)
	require.ErrorIs(t, err, database.ErrWatchedNotFound, "watched mirror must be dropped")
}

func TestMarkSeasonCompleteMarksReleasedOnly(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 1, AirDate: "2024-04-01",
		Episodes: episodes("2024-04-01", "2024-04-08", "2024-06-01"),
	})

	require.NoError(t, f.svc.MarkSeason(context.Background(), "u1", 100, 1, true, nil))

	view := f.view(t, 100)
	require.Equal(t, []int{1, 2}, view.Seasons[1].Episodes, "future episode must not be marked")
	require.True(t, view.Seasons[1].Completed)
}

func TestMarkSeasonCompleteReplacesExistingMarks(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 1, Episodes: episodes("2024-01-01", "2024-01-08"),
	})

	require.NoError(t, f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 2, true))
	require.NoError(t, f.svc.MarkSeason(context.Background(), "u1", 100, 1, true, nil))

	view := f.view(t, 100)
	require.Equal(t, []int{1, 2}, view.Seasons[1].Episodes)
}

func TestMarkSeasonNothingReleasedFlagStaysFalse(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 2, AirDate: "2024-09-01",
		Episodes: episodes("2024-09-01", "2024-09-08"),
	})

	require.NoError(t, f.svc.MarkSeason(context.Background(), "u1", 100, 2, true, nil))

	view := f.view(t, 100)
	require.Empty(t, view.Seasons[2].Episodes)
	require.False(t, view.Seasons[2].Completed, "no released episodes means not completed")
}

func TestMarkSeasonFetchFailureUsesFallback(t *testing.T) {
	f := setup(t)
	f.catalogue.seasonErr[1] = metadata.ErrUpstream

	fallback := episodes("2024-01-01", "2024-01-08", "2024-06-01")
	require.NoError(t, f.svc.MarkSeason(context.Background(), "u1", 100, 1, true, fallback))

	view := f.view(t, 100)
	require.Equal(t, []int{1, 2}, view.Seasons[1].Episodes, "fallback episodes pass the release gate too")
	require.True(t, view.Seasons[1].Completed)
}

func TestMarkSeasonFetchFailureNoFallbackFlagOnly(t *testing.T) {
	f := setup(t)
	f.catalogue.seasonErr[1] = metadata.ErrUpstream

	require.NoError(t, f.svc.MarkSeason(context.Background(), "u1", 100, 1, true, nil))

	view := f.view(t, 100)
	require.Empty(t, view.Seasons[1].Episodes)
	require.True(t, view.Seasons[1].Completed)
}

func TestMarkSeasonUncomplete(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{
		SeasonNumber: 1, Episodes: episodes("2024-01-01", "2024-01-08"),
	})

	require.NoError(t, f.svc.MarkSeason(context.Background(), "u1", 100, 1, true, nil))
	require.NoError(t, f.svc.MarkSeason(context.Background(), "u1", 100, 1, false, nil))

	view := f.view(t, 100)
	require.Empty(t, view.Seasons[1].Episodes)
	require.False(t, view.Seasons[1].Completed)
}

func TestMarkSeriesCompleteWalksAllSeasons(t *testing.T) {
	f := setup(t)
	f.catalogue.details[100] = &models.SeriesDetails{
		Seasons: []models.SeriesSeason{
			{SeasonNumber: 0, AirDate: "2024-01-01"},
			{SeasonNumber: 1, AirDate: "2024-01-01"},
			{SeasonNumber: 2, AirDate: "2024-08-01"},
		},
	}
	f.catalogue.addSeason(100, models.SeriesSeason{SeasonNumber: 0, AirDate: "2024-01-01", Episodes: episodes("2024-01-01")})
	f.catalogue.addSeason(100, models.SeriesSeason{SeasonNumber: 1, AirDate: "2024-01-01", Episodes: episodes("2024-01-01", "2024-01-08")})

	require.NoError(t, f.svc.MarkSeries(context.Background(), "u1", 100, true, nil))

	view := f.view(t, 100)
	require.True(t, view.Completed)
	require.Equal(t, []int{1}, view.Seasons[0].Episodes, "specials are included")
	require.Equal(t, []int{1, 2}, view.Seasons[1].Episodes)
	_, future := view.Seasons[2]
	require.False(t, future, "unaired season must be skipped entirely")

	w, err := f.watched.Get("u1", 100, models.MediaTypeTV)
	require.NoError(t, err)
	require.Equal(t, models.MediaTypeTV, w.MediaType)
}

func TestMarkSeriesPerSeasonDegrade(t *testing.T) {
	f := setup(t)
	f.catalogue.details[100] = &models.SeriesDetails{
		Seasons: []models.SeriesSeason{
			{SeasonNumber: 1, AirDate: "2024-01-01"},
			{SeasonNumber: 2, AirDate: "2024-02-01"},
		},
	}
	f.catalogue.addSeason(100, models.SeriesSeason{SeasonNumber: 1, AirDate: "2024-01-01", Episodes: episodes("2024-01-01")})
	f.catalogue.seasonErr[2] = metadata.ErrUpstream

	fallback := map[int][]models.SeriesEpisode{2: episodes("2024-02-01", "2024-02-08")}
	require.NoError(t, f.svc.MarkSeries(context.Background(), "u1", 100, true, fallback))

	view := f.view(t, 100)
	require.Equal(t, []int{1}, view.Seasons[1].Episodes)
	require.Equal(t, []int{1, 2}, view.Seasons[2].Episodes, "failed season uses its fallback")
	require.True(t, view.Seasons[2].Completed)
}

func TestMarkSeriesPerSeasonFlagOnlyDegrade(t *testing.T) {
	f := setup(t)
	f.catalogue.details[100] = &models.SeriesDetails{
		Seasons: []models.SeriesSeason{{SeasonNumber: 1, AirDate: "2024-01-01"}},
	}
	f.catalogue.seasonErr[1] = metadata.ErrUpstream

	require.NoError(t, f.svc.MarkSeries(context.Background(), "u1", 100, true, nil))

	view := f.view(t, 100)
	require.True(t, view.Completed)
	require.Empty(t, view.Seasons[1].Episodes)
	require.True(t, view.Seasons[1].Completed)
}

func TestMarkSeriesFullFetchFailureWithFallback(t *testing.T) {
	f := setup(t)
	f.catalogue.detailsErr = metadata.ErrUpstream

	fallback := map[int][]models.SeriesEpisode{
		1: episodes("2024-01-01"),
		2: episodes("2024-02-01", "2024-02-08"),
	}
	require.NoError(t, f.svc.MarkSeries(context.Background(), "u1", 100, true, fallback))

	view := f.view(t, 100)
	require.True(t, view.Completed)
	require.Equal(t, []int{1}, view.Seasons[1].Episodes)
	require.Equal(t, []int{1, 2}, view.Seasons[2].Episodes)
}

func TestMarkSeriesFullFetchFailureFlagOnly(t *testing.T) {
	f := setup(t)
	f.catalogue.detailsErr = metadata.ErrUpstream

	require.NoError(t, f.svc.MarkSeries(context.Background(), "u1", 100, true, nil))

	view := f.view(t, 100)
	require.True(t, view.Completed)
	require.Empty(t, view.Seasons)

	_, err := f.watched.Get("u1", 100, models.MediaTypeTV)
	require.NoError(t, err, "flag-only completion still mirrors the watched record")
}

func TestMarkSeriesUncomplete(t *testing.T) {
	f := setup(t)
	f.catalogue.details[100] = &models.SeriesDetails{
		Seasons: []models.SeriesSeason{{SeasonNumber: 1, AirDate: "2024-01-01"}},
	}
	f.catalogue.addSeason(100, models.SeriesSeason{SeasonNumber: 1, AirDate: "2024-01-01", Episodes: episodes("2024-01-01")})

	require.NoError(t, f.svc.MarkSeries(context.Background(), "u1", 100, true, nil))
	require.NoError(t, f.svc.MarkSeries(context.Background(), "u1", 100, false, nil))

	view := f.view(t, 100)
	require.False(t, view.Completed)
	require.Empty(t, view.Seasons[1].Episodes)
	require.False(t, view.Seasons[1].Completed)

	_, err := f.watched.Get("u1", 100, models.MediaTypeTV)
	require.ErrorIs(t, err, database.ErrWatchedNotFound)
}

func TestGetSeriesProgressUntracked(t *testing.T) {
	f := setup(t)

	view := f.view(t, 555)
	require.Equal(t, int64(555), view.SeriesID)
	require.False(t, view.Completed)
	require.Empty(t, view.Seasons)
}

func TestListAllProgress(t *testing.T) {
	f := setup(t)
	f.catalogue.addSeason(100, models.SeriesSeason{SeasonNumber: 1, Episodes: episodes("2024-01-01")})
	f.catalogue.addSeason(200, models.SeriesSeason{SeasonNumber: 1, Episodes: episodes("2024-01-01")})

	require.NoError(t, f.svc.MarkEpisode(context.Background(), "u1", 100, 1, 1, true))
	require.NoError(t, f.svc.MarkEpisode(context.Background(), "u1", 200, 1, 1, true))

	views, err := f.svc.ListAllProgress("u1")
	require.NoError(t, err)
	require.Len(t, views, 2)
}
