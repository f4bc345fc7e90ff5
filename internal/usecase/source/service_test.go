package source

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/provider"
)

type stubSourceRepo struct {
	byID    map[string]*entity.Source
	deleted []string
}

func newStubSourceRepo() *stubSourceRepo {
	return &stubSourceRepo{byID: make(map[string]*entity.Source)}
}

func (r *stubSourceRepo) Get(_ context.Context, id string) (*entity.Source, error) {
	s, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return s, nil
}

func (r *stubSourceRepo) GetByURL(_ context.Context, url string) (*entity.Source, error) {
	for _, s := range r.byID {
		if s.URL == url {
			return s, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *stubSourceRepo) List(_ context.Context) ([]*entity.Source, error) {
	out := make([]*entity.Source, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	return out, nil
}

func (r *stubSourceRepo) ListFetchable(ctx context.Context) ([]*entity.Source, error) {
	return r.List(ctx)
}

func (r *stubSourceRepo) Create(_ context.Context, s *entity.Source) error {
	if _, ok := r.byID[s.ID]; ok {
		return entity.ErrAlreadyExists
	}
	r.byID[s.ID] = s
	return nil
}

func (r *stubSourceRepo) Update(_ context.Context, s *entity.Source) error {
	if _, ok := r.byID[s.ID]; !ok {
		return entity.ErrNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *stubSourceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubSourceRepo) LinkVideo(_ context.Context, _, _ string) error   { return nil }
func (r *stubSourceRepo) UnlinkVideo(_ context.Context, _, _ string) error { return nil }
func (r *stubSourceRepo) VideoIDs(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}
func (r *stubSourceRepo) Videos(_ context.Context, _ string) ([]*entity.Video, error) {
	return nil, nil
}

type stubMaterializer struct {
	removed []string
}

func (m *stubMaterializer) WriteSourceFeed(_ context.Context, _ *entity.Source, _ []*entity.Video) error {
	return nil
}

func (m *stubMaterializer) WriteFilterFeed(_ context.Context, _ *entity.Source, _ *entity.Filter, _ []*entity.Video) error {
	return nil
}

func (m *stubMaterializer) RemoveSource(_ context.Context, sourceID string) error {
	m.removed = append(m.removed, sourceID)
	return nil
}

func (m *stubMaterializer) RemoveFilter(_ context.Context, _, _ string) error { return nil }

func newTestService() (*Service, *stubSourceRepo, *stubMaterializer) {
	repo := newStubSourceRepo()
	feeds := &stubMaterializer{}
	svc := NewService(repo, provider.NewRegistry(nil), feeds)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo, feeds
}

func TestCreate_SanitizesAndDerivesID(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService()

	src, err := svc.Create(context.Background(), CreateInput{
		URL: "https://youtube.com/@space?si=tracking",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://www.youtube.com/@space", src.URL)
	assert.Equal(t, entity.DeriveID("https://www.youtube.com/@space"), src.ID)
	assert.Equal(t, "youtube", src.Handler)
	assert.Equal(t, entity.OrderedByReleasedAt, src.OrderedBy)
	assert.True(t, src.Active)

	stored, err := repo.Get(context.Background(), src.ID)
	require.NoError(t, err)
	assert.Equal(t, src.URL, stored.URL)
}

func TestCreate_DuplicateURLSignalsAlreadyExists(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{URL: "https://www.youtube.com/@space"})
	require.NoError(t, err)

	// Un-sanitized variant of the same channel hits the same id.
	_, err = svc.Create(ctx, CreateInput{URL: "https://youtube.com/@space"})
	assert.ErrorIs(t, err, entity.ErrAlreadyExists)
	assert.Len(t, repo.byID, 1, "duplicate never creates a second row")
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{name: "empty url", in: CreateInput{}},
		{name: "unsupported domain", in: CreateInput{URL: "https://vimeo.com/channels/space"}},
		{name: "non-http scheme", in: CreateInput{URL: "ftp://youtube.com/@space"}},
		{name: "bad ordered_by", in: CreateInput{URL: "https://www.youtube.com/@space", OrderedBy: "title"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Create(ctx, tt.in)
			assert.Error(t, err)
		})
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService()
	ctx := context.Background()

	src, err := svc.Create(ctx, CreateInput{URL: "https://www.youtube.com/@space"})
	require.NoError(t, err)

	active := false
	require.NoError(t, svc.Update(ctx, UpdateInput{ID: src.ID, Name: "Renamed", Active: &active}))

	updated, err := repo.Get(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.False(t, updated.Active)
	assert.Equal(t, src.OrderedBy, updated.OrderedBy, "untouched fields survive")
}

func TestUpdate_Missing(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService()
	err := svc.Update(context.Background(), UpdateInput{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestDelete_RemovesFeedArtifacts(t *testing.T) {
	t.Parallel()

	svc, repo, feeds := newTestService()
	ctx := context.Background()

	src, err := svc.Create(ctx, CreateInput{URL: "https://www.youtube.com/@space"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, src.ID))
	assert.Equal(t, []string{src.ID}, repo.deleted)
	assert.Equal(t, []string{src.ID}, feeds.removed)
}
