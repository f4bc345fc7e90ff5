package video

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubefeed/internal/domain/entity"
)

type stubRepo struct {
	byID map[string]*entity.Video
}

func (r *stubRepo) Get(_ context.Context, id string) (*entity.Video, error) {
	v, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return v, nil
}

func (r *stubRepo) List(_ context.Context) ([]*entity.Video, error) {
	out := make([]*entity.Video, 0, len(r.byID))
	for _, v := range r.byID {
		out = append(out, v)
	}
	return out, nil
}

type stubRefresher struct {
	video *entity.Video
	err   error
	calls []string
}

func (f *stubRefresher) FetchVideo(_ context.Context, id string) (*entity.Video, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return nil, f.err
	}
	return f.video, nil
}

func newTestMux(repo Repository, refresher Refresher) *http.ServeMux {
	mux := http.NewServeMux()
	Register(mux, repo, refresher)
	return mux
}

func TestListHandler(t *testing.T) {
	repo := &stubRepo{byID: map[string]*entity.Video{
		"v1": {ID: "v1", Title: "Launch"},
	}}
	mux := newTestMux(repo, &stubRefresher{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/videos", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var out []DTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Launch", out[0].Title)
}

func TestGetHandler(t *testing.T) {
	released := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{byID: map[string]*entity.Video{
		"v1": {ID: "v1", Title: "Launch", MediaURL: "https://cdn/x.mp4", ReleasedAt: &released},
	}}
	mux := newTestMux(repo, &stubRefresher{})

	t.Run("found", func(t *testing.T) {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/videos/v1", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var out DTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.True(t, out.Resolved)
		// The direct media URL never leaves the service; clients go
		// through /media/{id}
		assert.NotContains(t, rr.Body.String(), "cdn/x.mp4")
	})

	t.Run("missing", func(t *testing.T) {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/videos/ffff", nil))
		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestRefreshHandler(t *testing.T) {
	t.Run("refreshed", func(t *testing.T) {
		refresher := &stubRefresher{video: &entity.Video{ID: "v1", Title: "Launch"}}
		mux := newTestMux(&stubRepo{}, refresher)

		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/videos/v1/refresh", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"v1"}, refresher.calls)
	})

	t.Run("transient outcome answers 202", func(t *testing.T) {
		refresher := &stubRefresher{err: &entity.FetchCanceledError{Reason: "not yet available"}}
		mux := newTestMux(&stubRepo{}, refresher)

		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/videos/v1/refresh", nil))

		require.Equal(t, http.StatusAccepted, rr.Code)
		var out map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		assert.Equal(t, "not yet available", out["detail"])
	})

	t.Run("missing record answers 404", func(t *testing.T) {
		refresher := &stubRefresher{err: entity.ErrNotFound}
		mux := newTestMux(&stubRepo{}, refresher)

		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/videos/ffff/refresh", nil))
		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}
