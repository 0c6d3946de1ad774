// Package progress reconciles user watch-marks against the live episode
// catalogue. Marks are validated and expanded using fresh metadata when
// the catalogue is reachable, and degrade to caller-supplied fallbacks or
// bare completion flags when it is not.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"watchhive/internal/database"
	"watchhive/models"
	"watchhive/services/metadata"
	"watchhive/utils/airdate"
)

var (
	// ErrEpisodeNotFound means the catalogue knows the season but not the
	// requested episode number.
	ErrEpisodeNotFound = errors.New("episode not found")
	// ErrEpisodeUnreleased means the episode exists but its air date is in
	// the future.
	ErrEpisodeUnreleased = errors.New("episode not yet released")
)

// seasonFetchConcurrency bounds the parallel per-season episode fetches
// during a whole-series mark.
const seasonFetchConcurrency = 4

type catalogue interface {
	SeriesDetails(ctx context.Context, seriesID int64) (*models.SeriesDetails, error)
	Season(ctx context.Context, seriesID int64, seasonNumber int) (*models.SeriesSeason, error)
}

var _ catalogue = (*metadata.Service)(nil)

// Service is the progress reconciler.
type Service struct {
	catalogue catalogue
	store     *database.ProgressRepository
	watched   *database.WatchedRepository
	now       func() time.Time
}

func NewService(cat catalogue, store *database.ProgressRepository, watched *database.WatchedRepository) *Service {
	return &Service{
		catalogue: cat,
		store:     store,
		watched:   watched,
		now:       time.Now,
	}
}

// MarkEpisode marks or unmarks a single episode. Marking validates the
// episode against the live episode list: an unknown episode fails with
// ErrEpisodeNotFound and a known future-dated one with
// ErrEpisodeUnreleased. When the catalogue is unreachable the mark is
// allowed through; refusing a watch-mark over a metadata outage would
// punish the user for someone else's downtime.
func (s *Service) MarkEpisode(ctx context.Context, userID string, seriesID int64, seasonNumber, episodeNumber int, watched bool) error {
	now := s.now()

	if watched {
		if err := s.validateEpisode(ctx, seriesID, seasonNumber, episodeNumber, now); err != nil {
			return err
		}
	}

	series, err := s.store.GetOrCreateSeriesProgress(userID, seriesID, now)
	if err != nil {
		return err
	}
	season, err := s.store.GetOrCreateSeasonProgress(series.ID, seasonNumber)
	if err != nil {
		return err
	}

	changed, err := s.store.SetEpisodeWatched(season.ID, episodeNumber, watched, now)
	if err != nil {
		return err
	}

	// Unmarking breaks any completion claim that covered the episode.
	if changed && !watched {
		if season.Completed {
			if err := s.store.SetSeasonCompleted(season.ID, false); err != nil {
				return err
			}
		}
		if series.Completed {
			if err := s.uncompleteSeries(userID, series); err != nil {
				return err
			}
		}
	}

	return s.store.TouchLastWatched(series.ID, now)
}

func (s *Service) validateEpisode(ctx context.Context, seriesID int64, seasonNumber, episodeNumber int, now time.Time) error {
	season, err := s.catalogue.Season(ctx, seriesID, seasonNumber)
	if err != nil {
		if errors.Is(err, metadata.ErrTitleNotFound) {
			return fmt.Errorf("%w: series %d season %d", ErrEpisodeNotFound, seriesID, seasonNumber)
		}
		log.Printf("[progress] episode validation skipped, catalogue unreachable for series %d season %d: %v", seriesID, seasonNumber, err)
		return nil
	}

	for _, ep := range season.Episodes {
		if ep.EpisodeNumber != episodeNumber {
			continue
		}
		if !airdate.Released(ep.AirDate, season.AirDate, now) {
			return fmt.Errorf("%w: series %d s%02de%02d airs %s", ErrEpisodeUnreleased, seriesID, seasonNumber, episodeNumber, ep.AirDate)
		}
		return nil
	}
	return fmt.Errorf("%w: series %d s%02de%02d", ErrEpisodeNotFound, seriesID, seasonNumber, episodeNumber)
}

// MarkSeason marks or unmarks a whole season. Completing replaces the
// season's marks with exactly the released episode set; an empty released
// set leaves the completion flag false. When the catalogue is unreachable
// the caller-supplied fallback episodes are used instead, and with no
// fallback the completion flag alone is set.
func (s *Service) MarkSeason(ctx context.Context, userID string, seriesID int64, seasonNumber int, completed bool, fallbackEps []models.SeriesEpisode) error {
	now := s.now()

	series, err := s.store.GetOrCreateSeriesProgress(userID, seriesID, now)
	if err != nil {
		return err
	}
	season, err := s.store.GetOrCreateSeasonProgress(series.ID, seasonNumber)
	if err != nil {
		return err
	}

	if !completed {
		if err := s.store.ClearEpisodeMarks(season.ID); err != nil {
			return err
		}
		if err := s.store.SetSeasonCompleted(season.ID, false); err != nil {
			return err
		}
		if series.Completed {
			if err := s.uncompleteSeries(userID, series); err != nil {
				return err
			}
		}
		return s.store.TouchLastWatched(series.ID, now)
	}

	episodes, seasonAirDate, fetchErr := s.seasonEpisodes(ctx, seriesID, seasonNumber)
	switch {
	case fetchErr == nil:
		if err := s.applySeasonCompletion(season.ID, episodes, seasonAirDate, now); err != nil {
			return err
		}
	case fallbackEps != nil:
		log.Printf("[progress] season fetch failed for series %d season %d, using fallback episodes: %v", seriesID, seasonNumber, fetchErr)
		if err := s.applySeasonCompletion(season.ID, fallbackEps, "", now); err != nil {
			return err
		}
	default:
		log.Printf("[progress] season fetch failed for series %d season %d, setting flag only: %v", seriesID, seasonNumber, fetchErr)
		if err := s.store.SetSeasonCompleted(season.ID, true); err != nil {
			return err
		}
	}

	return s.store.TouchLastWatched(series.ID, now)
}

func (s *Service) seasonEpisodes(ctx context.Context, seriesID int64, seasonNumber int) ([]models.SeriesEpisode, string, error) {
	season, err := s.catalogue.Season(ctx, seriesID, seasonNumber)
	if err != nil {
		return nil, "", err
	}
	return season.Episodes, season.AirDate, nil
}

// applySeasonCompletion swaps a season's marks for its released episode
// set and sets the completion flag, which stays false when nothing has
// been released yet.
func (s *Service) applySeasonCompletion(seasonProgressID int64, episodes []models.SeriesEpisode, seasonAirDate string, now time.Time) error {
	released := airdate.ReleasedEpisodes(episodes, seasonAirDate, now)

	nums := make([]int, 0, len(released))
	for _, ep := range released {
		nums = append(nums, ep.EpisodeNumber)
	}
	if err := s.store.ReplaceEpisodeMarks(seasonProgressID, nums, now); err != nil {
		return err
	}
	return s.store.SetSeasonCompleted(seasonProgressID, len(nums) > 0)
}

// MarkSeries marks or unmarks an entire series, specials included.
// Completing walks every season the catalogue lists, skips seasons whose
// own air date is in the future, and fetches the remaining episode lists
// concurrently. A season whose fetch fails degrades to its fallback
// entry or a bare flag; a failed series fetch degrades the whole
// operation the same way. The unified watched record for the series is
// kept in step with the series completion flag.
func (s *Service) MarkSeries(ctx context.Context, userID string, seriesID int64, completed bool, seasonsFallback map[int][]models.SeriesEpisode) error {
	now := s.now()

	series, err := s.store.GetOrCreateSeriesProgress(userID, seriesID, now)
	if err != nil {
		return err
	}

	if !completed {
		seasons, err := s.store.ListSeasonProgress(series.ID)
		if err != nil {
			return err
		}
		for _, season := range seasons {
			if err := s.store.ClearEpisodeMarks(season.ID); err != nil {
				return err
			}
			if err := s.store.SetSeasonCompleted(season.ID, false); err != nil {
				return err
			}
		}
		if err := s.uncompleteSeries(userID, series); err != nil {
			return err
		}
		return s.store.TouchLastWatched(series.ID, now)
	}

	details, err := s.catalogue.SeriesDetails(ctx, seriesID)
	if err != nil {
		log.Printf("[progress] series fetch failed for series %d, degrading: %v", seriesID, err)
		if err := s.applySeriesFallback(series, seasonsFallback, now); err != nil {
			return err
		}
	} else {
		if err := s.completeAllSeasons(ctx, series, details, seasonsFallback, now); err != nil {
			return err
		}
	}

	if err := s.store.SetSeriesCompleted(series.ID, true); err != nil {
		return err
	}
	if err := s.watched.Touch(userID, seriesID, models.MediaTypeTV, now); err != nil {
		return err
	}
	return s.store.TouchLastWatched(series.ID, now)
}

// completeAllSeasons fetches the listed seasons' episodes concurrently,
// then applies the results in season order through the single-writer
// store.
func (s *Service) completeAllSeasons(ctx context.Context, series models.SeriesProgress, details *models.SeriesDetails, seasonsFallback map[int][]models.SeriesEpisode, now time.Time) error {
	type seasonResult struct {
		summary models.SeriesSeason
		fetched *models.SeriesSeason
		err     error
	}

	var candidates []models.SeriesSeason
	for _, summary := range details.Seasons {
		if !airdate.SeasonReleased(summary.AirDate, now) {
			continue
		}
		candidates = append(candidates, summary)
	}

	results := make([]seasonResult, len(candidates))
	p := pool.New().WithMaxGoroutines(seasonFetchConcurrency)
	for i, summary := range candidates {
		p.Go(func() {
			fetched, err := s.catalogue.Season(ctx, series.SeriesID, summary.SeasonNumber)
			results[i] = seasonResult{summary: summary, fetched: fetched, err: err}
		})
	}
	p.Wait()

	for _, res := range results {
		seasonNumber := res.summary.SeasonNumber
		season, err := s.store.GetOrCreateSeasonProgress(series.ID, seasonNumber)
		if err != nil {
			return err
		}

		switch {
		case res.err == nil:
			if err := s.applySeasonCompletion(season.ID, res.fetched.Episodes, res.fetched.AirDate, now); err != nil {
				return err
			}
		case seasonsFallback[seasonNumber] != nil:
			log.Printf("[progress] season fetch failed for series %d season %d, using fallback episodes: %v", series.SeriesID, seasonNumber, res.err)
			if err := s.applySeasonCompletion(season.ID, seasonsFallback[seasonNumber], res.summary.AirDate, now); err != nil {
				return err
			}
		default:
			log.Printf("[progress] season fetch failed for series %d season %d, setting flag only: %v", series.SeriesID, seasonNumber, res.err)
			if err := s.store.SetSeasonCompleted(season.ID, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// applySeriesFallback completes the series from the caller-supplied
// per-season episode map, or flags alone when none was supplied.
func (s *Service) applySeriesFallback(series models.SeriesProgress, seasonsFallback map[int][]models.SeriesEpisode, now time.Time) error {
	if len(seasonsFallback) == 0 {
		return nil
	}

	numbers := make([]int, 0, len(seasonsFallback))
	for n := range seasonsFallback {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		season, err := s.store.GetOrCreateSeasonProgress(series.ID, n)
		if err != nil {
			return err
		}
		if err := s.applySeasonCompletion(season.ID, seasonsFallback[n], "", now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) uncompleteSeries(userID string, series models.SeriesProgress) error {
	if err := s.store.SetSeriesCompleted(series.ID, false); err != nil {
		return err
	}
	// Drop the mirrored watched record; a series with unmarked parts is no
	// longer "watched".
	if err := s.watched.Delete(userID, series.SeriesID, models.MediaTypeTV); err != nil && !errors.Is(err, database.ErrWatchedNotFound) {
		return err
	}
	return nil
}

// GetSeriesProgress returns the progress view for one series. A series
// the user never touched yields an empty view rather than an error.
func (s *Service) GetSeriesProgress(userID string, seriesID int64) (models.SeriesProgressView, error) {
	series, err := s.store.GetSeriesProgress(userID, seriesID)
	if err != nil {
		return models.SeriesProgressView{}, err
	}
	if series == nil {
		return models.SeriesProgressView{SeriesID: seriesID, Seasons: map[int]models.SeasonProgressView{}}, nil
	}
	return s.buildView(*series)
}

// ListAllProgress returns every tracked series for the user, most
// recently watched first.
func (s *Service) ListAllProgress(userID string) ([]models.SeriesProgressView, error) {
	all, err := s.store.ListSeriesProgress(userID)
	if err != nil {
		return nil, err
	}

	views := make([]models.SeriesProgressView, 0, len(all))
	for _, series := range all {
		view, err := s.buildView(series)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) buildView(series models.SeriesProgress) (models.SeriesProgressView, error) {
	view := models.SeriesProgressView{
		SeriesID:    series.SeriesID,
		Completed:   series.Completed,
		LastWatched: series.LastWatched,
		Seasons:     map[int]models.SeasonProgressView{},
	}

	seasons, err := s.store.ListSeasonProgress(series.ID)
	if err != nil {
		return models.SeriesProgressView{}, err
	}
	for _, season := range seasons {
		marks, err := s.store.ListEpisodeMarks(season.ID)
		if err != nil {
			return models.SeriesProgressView{}, err
		}
		episodes := make([]int, 0, len(marks))
		for _, m := range marks {
			episodes = append(episodes, m.EpisodeNumber)
		}
		view.Seasons[season.SeasonNumber] = models.SeasonProgressView{
			Episodes:  episodes,
			Completed: season.Completed,
		}
	}
	return view, nil
}
