package models

import "time"

// WatchlistItem is a wishlist entry: content the user intends to watch.
type WatchlistItem struct {
	ID        int64     `json:"-"`
	UserID    string    `json:"userId"`
	ContentID int64     `json:"contentId"`
	MediaType string    `json:"mediaType"`
	Title     string    `json:"title,omitempty"`
	PosterURL string    `json:"posterUrl,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// WatchlistUpsert is the request body for adding a watchlist entry.
type WatchlistUpsert struct {
	ContentID int64  `json:"contentId"`
	MediaType string `json:"mediaType"`
	Title     string `json:"title,omitempty"`
	PosterURL string `json:"posterUrl,omitempty"`
}
