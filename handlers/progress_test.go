package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"watchhive/internal/auth"
	"watchhive/models"
	"watchhive/services/progress"
)

type fakeProgressService struct {
	markEpisodeErr error
	lastWatched    *bool
	view           models.SeriesProgressView
}

func (f *fakeProgressService) MarkEpisode(_ context.Context, _ string, _ int64, _, _ int, watched bool) error {
	f.lastWatched = &watched
	return f.markEpisodeErr
}

func (f *fakeProgressService) MarkSeason(_ context.Context, _ string, _ int64, _ int, _ bool, _ []models.SeriesEpisode) error {
	return nil
}

func (f *fakeProgressService) MarkSeries(_ context.Context, _ string, _ int64, _ bool, _ map[int][]models.SeriesEpisode) error {
	return nil
}

func (f *fakeProgressService) GetSeriesProgress(_ string, seriesID int64) (models.SeriesProgressView, error) {
	v := f.view
	v.SeriesID = seriesID
	return v, nil
}

func (f *fakeProgressService) ListAllProgress(string) ([]models.SeriesProgressView, error) {
	return nil, nil
}

func markEpisodeRequest(t *testing.T, userID string, body string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodPut, "/api/users/"+userID+"/progress/series/100/seasons/1/episodes/2", strings.NewReader(body))
	r = mux.SetURLVars(r, map[string]string{
		"userID":        userID,
		"seriesID":      "100",
		"seasonNumber":  "1",
		"episodeNumber": "2",
	})
	return auth.WithIdentity(r, models.Identity{UserID: userID, Role: models.RoleUser})
}

func TestMarkEpisodeHandler(t *testing.T) {
	svc := &fakeProgressService{}
	h := NewProgressHandler(svc)

	w := httptest.NewRecorder()
	h.MarkEpisode(w, markEpisodeRequest(t, "u1", `{"watched":true}`))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastWatched)
	require.True(t, *svc.lastWatched)
	require.Contains(t, w.Body.String(), `"seriesId":100`)
}

func TestMarkEpisodeHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown episode", progress.ErrEpisodeNotFound, http.StatusNotFound},
		{"unreleased episode", progress.ErrEpisodeUnreleased, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewProgressHandler(&fakeProgressService{markEpisodeErr: tc.err})
			w := httptest.NewRecorder()
			h.MarkEpisode(w, markEpisodeRequest(t, "u1", `{"watched":true}`))
			require.Equal(t, tc.status, w.Code)
		})
	}
}

func TestMarkEpisodeHandlerForbidden(t *testing.T) {
	h := NewProgressHandler(&fakeProgressService{})

	r := httptest.NewRequest(http.MethodPut, "/api/users/other/progress/series/100/seasons/1/episodes/2", strings.NewReader(`{"watched":true}`))
	r = mux.SetURLVars(r, map[string]string{"userID": "other", "seriesID": "100", "seasonNumber": "1", "episodeNumber": "2"})
	r = auth.WithIdentity(r, models.Identity{UserID: "u1", Role: models.RoleUser})

	w := httptest.NewRecorder()
	h.MarkEpisode(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkEpisodeHandlerAdminBypass(t *testing.T) {
	h := NewProgressHandler(&fakeProgressService{})

	r := httptest.NewRequest(http.MethodPut, "/api/users/other/progress/series/100/seasons/1/episodes/2", strings.NewReader(`{"watched":true}`))
	r = mux.SetURLVars(r, map[string]string{"userID": "other", "seriesID": "100", "seasonNumber": "1", "episodeNumber": "2"})
	r = auth.WithIdentity(r, models.Identity{UserID: "admin-user", Role: models.RoleAdmin})

	w := httptest.NewRecorder()
	h.MarkEpisode(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMarkEpisodeHandlerBadPath(t *testing.T) {
	h := NewProgressHandler(&fakeProgressService{})

	r := httptest.NewRequest(http.MethodPut, "/api/users/u1/progress/series/abc/seasons/1/episodes/2", strings.NewReader(`{"watched":true}`))
	r = mux.SetURLVars(r, map[string]string{"userID": "u1", "seriesID": "abc", "seasonNumber": "1", "episodeNumber": "2"})
	r = auth.WithIdentity(r, models.Identity{UserID: "u1", Role: models.RoleUser})

	w := httptest.NewRecorder()
	h.MarkEpisode(w, r)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
