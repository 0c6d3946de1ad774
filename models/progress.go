package models

import "time"

// SeriesProgress is one user's tracking row for one series. The completed
// flag is set only by an explicit mark-series-complete operation, never
// derived from episode counts.
type SeriesProgress struct {
	ID          int64     `json:"-"`
	UserID      string    `json:"userId"`
	SeriesID    int64     `json:"seriesId"`
	Completed   bool      `json:"completed"`
	LastWatched time.Time `json:"lastWatched"`
}

// SeasonProgress tracks completion of a single season under a series
// progress row. Season 0 ("specials") is a valid season number.
type SeasonProgress struct {
	ID               int64 `json:"-"`
	SeriesProgressID int64 `json:"-"`
	SeasonNumber     int   `json:"seasonNumber"`
	Completed        bool  `json:"completed"`
}

// EpisodeMark records that a specific episode has been watched. Presence
// of the row means watched; there is at most one per (season, episode).
type EpisodeMark struct {
	ID               int64     `json:"-"`
	SeasonProgressID int64     `json:"-"`
	EpisodeNumber    int       `json:"episodeNumber"`
	WatchedAt        time.Time `json:"watchedAt"`
}

// SeasonProgressView is the per-season slice of a series progress response.
type SeasonProgressView struct {
	Episodes  []int `json:"episodes"`
	Completed bool  `json:"completed"`
}

// SeriesProgressView is the read model returned by the progress endpoints.
type SeriesProgressView struct {
	SeriesID    int64                      `json:"seriesId"`
	Completed   bool                       `json:"completed"`
	LastWatched time.Time                  `json:"lastWatched"`
	Seasons     map[int]SeasonProgressView `json:"seasons"`
}

// MarkEpisodeRequest is the body for marking a single episode.
type MarkEpisodeRequest struct {
	Watched bool `json:"watched"`
}

// MarkSeasonRequest is the body for marking a whole season. The fallback
// episode list is only consulted when the live metadata fetch fails.
type MarkSeasonRequest struct {
	Completed        bool            `json:"completed"`
	EpisodesFallback []SeriesEpisode `json:"episodesFallback,omitempty"`
}

// MarkSeriesRequest is the body for marking a whole series. The fallback
// map (season number -> episodes, assumed pre-filtered to released) is
// only consulted when the live metadata fetch fails.
type MarkSeriesRequest struct {
	Completed       bool                    `json:"completed"`
	SeasonsFallback map[int][]SeriesEpisode `json:"seasonsFallback,omitempty"`
}
