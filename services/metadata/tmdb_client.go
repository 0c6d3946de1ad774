package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"watchhive/models"
)

const (
	defaultBaseURL   = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	tmdbPosterSize   = "w500"
)

type tmdbClient struct {
	baseURL  string
	apiKey   string
	language string
	httpc    *http.Client

	// Outbound throttle; the upstream allows roughly 50 req/s per key.
	limiter *rate.Limiter
}

func newTMDBClient(baseURL, apiKey, language string, timeout time.Duration) *tmdbClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &tmdbClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   strings.TrimSpace(apiKey),
		language: language,
		httpc:    &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(40), 10),
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c != nil && c.apiKey != ""
}

// doGET fetches an endpoint into v, retrying transient failures (network
// errors, 429, 5xx) with exponential backoff. Other 4xx responses are
// permanent and returned immediately.
func (c *tmdbClient) doGET(ctx context.Context, endpoint string, query url.Values, v any) error {
	if !c.isConfigured() {
		return fmt.Errorf("%w: api key not configured", ErrUpstream)
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	if lang := strings.TrimSpace(c.language); lang != "" {
		query.Set("language", lang)
	} else {
		query.Set("language", "en-US")
	}
	full := c.baseURL + endpoint + "?" + query.Encode()

	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := c.httpc.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return fmt.Errorf("catalogue request failed: %s", resp.Status)
			case resp.StatusCode == http.StatusNotFound:
				return retry.Unrecoverable(ErrTitleNotFound)
			case resp.StatusCode >= 400:
				return retry.Unrecoverable(fmt.Errorf("catalogue request failed: %s", resp.Status))
			}

			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("decode catalogue response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, ErrTitleNotFound) {
			return ErrTitleNotFound
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

type tmdbSeriesResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	FirstAirDate string  `json:"first_air_date"`
	PosterPath   string  `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
	Popularity   float64 `json:"popularity"`
	Seasons      []struct {
		SeasonNumber int    `json:"season_number"`
		Name         string `json:"name"`
		AirDate      string `json:"air_date"`
		EpisodeCount int    `json:"episode_count"`
	} `json:"seasons"`
}

type tmdbSeasonResponse struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	AirDate      string `json:"air_date"`
	Episodes     []struct {
		EpisodeNumber int    `json:"episode_number"`
		Name          string `json:"name"`
		Overview      string `json:"overview"`
		AirDate       string `json:"air_date"`
		Runtime       int    `json:"runtime"`
	} `json:"episodes"`
}

type tmdbListResponse struct {
	Results []struct {
		ID           int64   `json:"id"`
		Name         string  `json:"name"`
		Title        string  `json:"title"`
		Overview     string  `json:"overview"`
		FirstAirDate string  `json:"first_air_date"`
		ReleaseDate  string  `json:"release_date"`
		PosterPath   string  `json:"poster_path"`
		VoteAverage  float64 `json:"vote_average"`
		Popularity   float64 `json:"popularity"`
	} `json:"results"`
}

func (c *tmdbClient) seriesDetails(ctx context.Context, seriesID int64) (*models.SeriesDetails, error) {
	var payload tmdbSeriesResponse
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d", seriesID), nil, &payload); err != nil {
		return nil, err
	}

	details := &models.SeriesDetails{
		Title: models.Title{
			ID:          payload.ID,
			Name:        payload.Name,
			Overview:    payload.Overview,
			Year:        parseYear(payload.FirstAirDate),
			MediaType:   models.MediaTypeTV,
			Poster:      buildImage(payload.PosterPath),
			VoteAverage: payload.VoteAverage,
			Popularity:  payload.Popularity,
		},
	}
	for _, s := range payload.Seasons {
		details.Seasons = append(details.Seasons, models.SeriesSeason{
			SeasonNumber: s.SeasonNumber,
			Name:         s.Name,
			AirDate:      s.AirDate,
			EpisodeCount: s.EpisodeCount,
		})
	}
	return details, nil
}

func (c *tmdbClient) season(ctx context.Context, seriesID int64, seasonNumber int) (*models.SeriesSeason, error) {
	var payload tmdbSeasonResponse
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d/season/%d", seriesID, seasonNumber), nil, &payload); err != nil {
		return nil, err
	}

	season := &models.SeriesSeason{
		SeasonNumber: payload.SeasonNumber,
		Name:         payload.Name,
		AirDate:      payload.AirDate,
		EpisodeCount: len(payload.Episodes),
	}
	for _, e := range payload.Episodes {
		season.Episodes = append(season.Episodes, models.SeriesEpisode{
			EpisodeNumber: e.EpisodeNumber,
			Name:          e.Name,
			Overview:      e.Overview,
			AirDate:       e.AirDate,
			Runtime:       e.Runtime,
		})
	}
	return season, nil
}

func (c *tmdbClient) recommendations(ctx context.Context, mediaType string, id int64) ([]models.Title, error) {
	var payload tmdbListResponse
	if err := c.doGET(ctx, fmt.Sprintf("/%s/%d/recommendations", mediaType, id), nil, &payload); err != nil {
		return nil, err
	}
	return titlesFromList(payload, mediaType), nil
}

func (c *tmdbClient) search(ctx context.Context, mediaType, query string) ([]models.Title, error) {
	q := url.Values{}
	q.Set("query", query)
	var payload tmdbListResponse
	if err := c.doGET(ctx, "/search/"+mediaType, q, &payload); err != nil {
		return nil, err
	}
	return titlesFromList(payload, mediaType), nil
}

func titlesFromList(payload tmdbListResponse, mediaType string) []models.Title {
	titles := make([]models.Title, 0, len(payload.Results))
	for _, r := range payload.Results {
		name := r.Name
		date := r.FirstAirDate
		if mediaType == models.MediaTypeMovie {
			name = r.Title
			date = r.ReleaseDate
		}
		titles = append(titles, models.Title{
			ID:          r.ID,
			Name:        name,
			Overview:    r.Overview,
			Year:        parseYear(date),
			MediaType:   mediaType,
			Poster:      buildImage(r.PosterPath),
			VoteAverage: r.VoteAverage,
			Popularity:  r.Popularity,
		})
	}
	return titles
}

func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

func buildImage(posterPath string) *models.Image {
	if posterPath == "" {
		return nil
	}
	return &models.Image{
		URL:  tmdbImageBaseURL + "/" + tmdbPosterSize + posterPath,
		Type: "poster",
	}
}
