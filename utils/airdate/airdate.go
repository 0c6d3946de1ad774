// Package airdate decides whether episodes and seasons have been released
// as of a given day, based on the optional air-date strings the upstream
// catalogue provides.
package airdate

import (
	"strings"
	"time"

	"watchhive/models"
)

// Released reports whether an episode is released as of today. The
// episode's own air date wins; a missing episode date falls back to the
// season date. When no usable date exists anywhere the episode is treated
// as released: the upstream catalogue has real data gaps, and blocking a
// legitimate watch-mark is worse than allowing an early one.
func Released(episodeAirDate, seasonAirDate string, today time.Time) bool {
	if d, ok := parseDay(episodeAirDate); ok {
		return !d.After(dayOf(today))
	}
	if d, ok := parseDay(seasonAirDate); ok {
		return !d.After(dayOf(today))
	}
	return true
}

// SeasonReleased reports whether a season's own air date has passed.
// Seasons without a date are treated as released.
func SeasonReleased(seasonAirDate string, today time.Time) bool {
	if d, ok := parseDay(seasonAirDate); ok {
		return !d.After(dayOf(today))
	}
	return true
}

// ReleasedEpisodes filters a season's episode list down to the episodes
// that are released as of today, applying the season date as the per
// episode fallback.
func ReleasedEpisodes(episodes []models.SeriesEpisode, seasonAirDate string, today time.Time) []models.SeriesEpisode {
	var out []models.SeriesEpisode
	for _, ep := range episodes {
		if Released(ep.AirDate, seasonAirDate, today) {
			out = append(out, ep)
		}
	}
	return out
}

// parseDay parses a date string down to a date-only value in local time.
// Unparseable input reports ok=false so callers fail open.
func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
