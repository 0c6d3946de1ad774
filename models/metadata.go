package models

// Basic metadata structures for titles, seasons, and episodes as returned
// by the upstream catalogue.

type Image struct {
	URL  string `json:"url"`
	Type string `json:"type"` // poster, backdrop
}

// Title is a movie or series entry from the upstream catalogue.
type Title struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Overview    string  `json:"overview,omitempty"`
	Year        int     `json:"year,omitempty"`
	MediaType   string  `json:"mediaType"` // tv | movie
	Poster      *Image  `json:"poster,omitempty"`
	VoteAverage float64 `json:"voteAverage,omitempty"`
	Popularity  float64 `json:"popularity,omitempty"`
}

// SeriesEpisode is a single episode within a season. AirDate is the
// upstream date string (YYYY-MM-DD) and may be empty.
type SeriesEpisode struct {
	EpisodeNumber int    `json:"episodeNumber"`
	Name          string `json:"name,omitempty"`
	Overview      string `json:"overview,omitempty"`
	AirDate       string `json:"airDate,omitempty"`
	Runtime       int    `json:"runtimeMinutes,omitempty"`
}

// SeriesSeason is a season summary; Episodes is populated only by the
// per-season endpoint, not by the series detail response.
type SeriesSeason struct {
	SeasonNumber int             `json:"seasonNumber"`
	Name         string          `json:"name,omitempty"`
	AirDate      string          `json:"airDate,omitempty"`
	EpisodeCount int             `json:"episodeCount,omitempty"`
	Episodes     []SeriesEpisode `json:"episodes,omitempty"`
}

// SeriesDetails is the series-level response with its season summaries.
type SeriesDetails struct {
	Title   Title          `json:"title"`
	Seasons []SeriesSeason `json:"seasons"`
}
