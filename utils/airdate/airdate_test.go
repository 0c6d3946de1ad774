package airdate

import (
	"testing"
	"time"

	"watchhive/models"
)

var today = time.Date(2024, 6, 15, 13, 45, 0, 0, time.Local)

func TestReleasedPastEpisodeDate(t *testing.T) {
	if !Released("2024-06-14", "", today) {
		t.Fatal("episode aired yesterday should be released")
	}
	if !Released("2024-06-15", "", today) {
		t.Fatal("episode airing today should be released")
	}
}

func TestReleasedFutureEpisodeDate(t *testing.T) {
	if Released("2024-06-16", "", today) {
		t.Fatal("episode airing tomorrow should not be released")
	}
	// Episode date wins even when the season date is in the past.
	if Released("2024-06-16", "2020-01-01", today) {
		t.Fatal("future episode date must override past season date")
	}
}

func TestReleasedSeasonFallback(t *testing.T) {
	if !Released("", "2024-01-01", today) {
		t.Fatal("missing episode date with past season date should be released")
	}
	if Released("", "2025-01-01", today) {
		t.Fatal("missing episode date with future season date should not be released")
	}
}

func TestReleasedFailsOpen(t *testing.T) {
	if !Released("", "", today) {
		t.Fatal("no dates anywhere should be treated as released")
	}
	if !Released("not-a-date", "also-bad", today) {
		t.Fatal("unparseable dates should be treated as released")
	}
}

func TestReleasedTruncatesTimestamps(t *testing.T) {
	if !Released("2024-06-15T20:00:00Z", "", today) {
		t.Fatal("same-day timestamp should count as released regardless of time")
	}
}

func TestSeasonReleased(t *testing.T) {
	if !SeasonReleased("2024-06-15", today) {
		t.Fatal("season airing today should be released")
	}
	if SeasonReleased("2024-07-01", today) {
		t.Fatal("future season should not be released")
	}
	if !SeasonReleased("", today) {
		t.Fatal("season without a date should be treated as released")
	}
}

func TestReleasedEpisodes(t *testing.T) {
	eps := []models.SeriesEpisode{
		{EpisodeNumber: 1, AirDate: "2024-06-01"},
		{EpisodeNumber: 2, AirDate: "2024-06-08"},
		{EpisodeNumber: 3, AirDate: "2024-06-22"},
		{EpisodeNumber: 4}, // no date, season fallback applies
	}

	got := ReleasedEpisodes(eps, "2024-06-01", today)
	if len(got) != 3 {
		t.Fatalf("expected 3 released episodes, got %d", len(got))
	}
	if got[0].EpisodeNumber != 1 || got[1].EpisodeNumber != 2 || got[2].EpisodeNumber != 4 {
		t.Fatalf("unexpected released set: %+v", got)
	}
}
