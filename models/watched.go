package models

import "time"

// Media types accepted by the watched-content and watchlist tables.
const (
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// ValidMediaType reports whether t is one of the accepted media types.
func ValidMediaType(t string) bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// WatchedContent is the unified "this user watched this title" record
// shared by movies and series. For series it mirrors
// SeriesProgress.Completed and is maintained by the progress service.
type WatchedContent struct {
	ID           int64     `json:"-"`
	UserID       string    `json:"userId"`
	ContentID    int64     `json:"contentId"`
	MediaType    string    `json:"mediaType"`
	DateWatched  time.Time `json:"dateWatched"`
	TimesWatched int       `json:"timesWatched"`
}

// WatchedUpsert is the request body for marking content watched.
type WatchedUpsert struct {
	ContentID int64  `json:"contentId"`
	MediaType string `json:"mediaType"`
}
