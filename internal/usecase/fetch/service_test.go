package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/extractor"
	"tubefeed/internal/infra/provider"
	"tubefeed/internal/usecase/notify"
)

// --- stubs ---

type stubSourceRepo struct {
	sources            map[string]*entity.Source
	links              map[string][]string // sourceID -> ordered video ids
	videos             *stubVideoRepo
	listFetchableCalls int
}

func newStubSourceRepo(videos *stubVideoRepo, srcs ...*entity.Source) *stubSourceRepo {
	r := &stubSourceRepo{
		sources: make(map[string]*entity.Source),
		links:   make(map[string][]string),
		videos:  videos,
	}
	for _, s := range srcs {
		r.sources[s.ID] = s
	}
	return r
}

func (r *stubSourceRepo) Get(_ context.Context, id string) (*entity.Source, error) {
	s, ok := r.sources[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return s, nil
}

func (r *stubSourceRepo) GetByURL(_ context.Context, url string) (*entity.Source, error) {
	for _, s := range r.sources {
		if s.URL == url {
			return s, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *stubSourceRepo) List(_ context.Context) ([]*entity.Source, error) {
	out := make([]*entity.Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	return out, nil
}

func (r *stubSourceRepo) ListFetchable(ctx context.Context) ([]*entity.Source, error) {
	r.listFetchableCalls++
	all, _ := r.List(ctx)
	var out []*entity.Source
	for _, s := range all {
		if s.Fetchable() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *stubSourceRepo) Create(_ context.Context, s *entity.Source) error {
	if _, ok := r.sources[s.ID]; ok {
		return entity.ErrAlreadyExists
	}
	r.sources[s.ID] = s
	return nil
}

func (r *stubSourceRepo) Update(_ context.Context, s *entity.Source) error {
	if _, ok := r.sources[s.ID]; !ok {
		return entity.ErrNotFound
	}
	r.sources[s.ID] = s
	return nil
}

func (r *stubSourceRepo) Delete(_ context.Context, id string) error {
	delete(r.sources, id)
	delete(r.links, id)
	return nil
}

func (r *stubSourceRepo) LinkVideo(_ context.Context, sourceID, videoID string) error {
	for _, id := range r.links[sourceID] {
		if id == videoID {
			return nil
		}
	}
	r.links[sourceID] = append(r.links[sourceID], videoID)
	return nil
}

func (r *stubSourceRepo) UnlinkVideo(_ context.Context, sourceID, videoID string) error {
	ids := r.links[sourceID]
	for i, id := range ids {
		if id == videoID {
			r.links[sourceID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *stubSourceRepo) VideoIDs(_ context.Context, sourceID string) ([]string, error) {
	return append([]string(nil), r.links[sourceID]...), nil
}

func (r *stubSourceRepo) Videos(_ context.Context, sourceID string) ([]*entity.Video, error) {
	var out []*entity.Video
	for _, id := range r.links[sourceID] {
		if v, ok := r.videos.byID[id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

type stubVideoRepo struct {
	byID           map[string]*entity.Video
	deleted        []string
	updateNotFound bool
}

func newStubVideoRepo(videos ...*entity.Video) *stubVideoRepo {
	r := &stubVideoRepo{byID: make(map[string]*entity.Video)}
	for _, v := range videos {
		r.byID[v.ID] = v
	}
	return r
}

func (r *stubVideoRepo) Get(_ context.Context, id string) (*entity.Video, error) {
	v, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return v, nil
}

func (r *stubVideoRepo) List(_ context.Context) ([]*entity.Video, error) {
	out := make([]*entity.Video, 0, len(r.byID))
	for _, v := range r.byID {
		out = append(out, v)
	}
	return out, nil
}

func (r *stubVideoRepo) Create(_ context.Context, v *entity.Video) error {
	if _, ok := r.byID[v.ID]; ok {
		return entity.ErrAlreadyExists
	}
	r.byID[v.ID] = v
	return nil
}

func (r *stubVideoRepo) Update(_ context.Context, v *entity.Video) error {
	if r.updateNotFound {
		return entity.ErrNotFound
	}
	if _, ok := r.byID[v.ID]; !ok {
		return entity.ErrNotFound
	}
	r.byID[v.ID] = v
	return nil
}

func (r *stubVideoRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.byID, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *stubVideoRepo) ExistsByIDBatch(_ context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.byID[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type stubFilterRepo struct {
	bySource map[string][]*entity.Filter
}

func (r *stubFilterRepo) Get(_ context.Context, id string) (*entity.Filter, error) {
	for _, fs := range r.bySource {
		for _, f := range fs {
			if f.ID == id {
				return f, nil
			}
		}
	}
	return nil, entity.ErrNotFound
}

func (r *stubFilterRepo) ListBySource(_ context.Context, sourceID string) ([]*entity.Filter, error) {
	return r.bySource[sourceID], nil
}

func (r *stubFilterRepo) Create(_ context.Context, f *entity.Filter) error {
	if r.bySource == nil {
		r.bySource = make(map[string][]*entity.Filter)
	}
	r.bySource[f.SourceID] = append(r.bySource[f.SourceID], f)
	return nil
}

func (r *stubFilterRepo) Update(_ context.Context, _ *entity.Filter) error { return nil }
func (r *stubFilterRepo) Delete(_ context.Context, _ string) error         { return nil }
func (r *stubFilterRepo) AddCriteria(_ context.Context, _ string, _ *entity.Criteria) error {
	return nil
}
func (r *stubFilterRepo) RemoveCriteria(_ context.Context, _ string) error { return nil }

type stubExtractor struct {
	sourceMeta *extractor.SourceMetadata
	sourceErr  error

	videoMeta map[string]*extractor.VideoMetadata
	videoErr  map[string]error

	gotSourceParams []extractor.Params
	videoCalls      []string
}

func (e *stubExtractor) SourceMetadata(_ context.Context, _ string, params extractor.Params) (*extractor.SourceMetadata, error) {
	e.gotSourceParams = append(e.gotSourceParams, params)
	if e.sourceErr != nil {
		return nil, e.sourceErr
	}
	return e.sourceMeta, nil
}

func (e *stubExtractor) VideoMetadata(_ context.Context, url string) (*extractor.VideoMetadata, error) {
	e.videoCalls = append(e.videoCalls, url)
	if err, ok := e.videoErr[url]; ok {
		return nil, err
	}
	if meta, ok := e.videoMeta[url]; ok {
		return meta, nil
	}
	return nil, extractor.ErrVideoUnavailable
}

type stubMaterializer struct {
	sourceFeeds int
	filterFeeds int
	removed     []string
}

func (m *stubMaterializer) WriteSourceFeed(_ context.Context, _ *entity.Source, _ []*entity.Video) error {
	m.sourceFeeds++
	return nil
}

func (m *stubMaterializer) WriteFilterFeed(_ context.Context, _ *entity.Source, _ *entity.Filter, _ []*entity.Video) error {
	m.filterFeeds++
	return nil
}

func (m *stubMaterializer) RemoveSource(_ context.Context, sourceID string) error {
	m.removed = append(m.removed, sourceID)
	return nil
}

func (m *stubMaterializer) RemoveFilter(_ context.Context, _, _ string) error { return nil }

type stubNotify struct {
	sourceFailed    int
	fetchErrors     int
	integrityErrors int
	newVideos       int
}

func (n *stubNotify) NotifyNewVideo(_ context.Context, _ *entity.Video, _ *entity.Source) error {
	n.newVideos++
	return nil
}

func (n *stubNotify) NotifySourceFailed(_ context.Context, _ *entity.Source, _ error) error {
	n.sourceFailed++
	return nil
}

func (n *stubNotify) NotifyFetchError(_ context.Context, _ string, _ error) error {
	n.fetchErrors++
	return nil
}

func (n *stubNotify) NotifyIntegrityError(_ context.Context, _ string) error {
	n.integrityErrors++
	return nil
}

func (n *stubNotify) GetChannelHealth() []notify.ChannelHealthStatus { return nil }

func (n *stubNotify) Shutdown(_ context.Context) error { return nil }

// --- fixtures ---

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

const (
	watchURL1 = "https://www.youtube.com/watch?v=abc12345678"
	watchURL2 = "https://www.youtube.com/watch?v=def12345678"
)

func youtubeSource() *entity.Source {
	return &entity.Source{
		ID:      entity.DeriveID("https://www.youtube.com/@space"),
		URL:     "https://www.youtube.com/@space",
		Name:    "Space Channel",
		Handler: "youtube",
		Active:  true,
	}
}

func sourceMetaWithEntries() *extractor.SourceMetadata {
	return &extractor.SourceMetadata{
		Title:    "Space Channel HD",
		Uploader: "Space Org",
		Entries: []extractor.Entry{
			{Title: "Launch one", WebpageURL: watchURL1, Timestamp: fixedNow.Add(-2 * time.Hour).Unix(), Duration: 300},
			{Title: "Launch two", WebpageURL: watchURL2, Timestamp: fixedNow.Add(-time.Hour).Unix(), Duration: 600},
		},
	}
}

func videoMetaFor(url string) *extractor.VideoMetadata {
	return &extractor.VideoMetadata{
		Entry: extractor.Entry{
			Title:      "Resolved",
			WebpageURL: url,
			Timestamp:  fixedNow.Add(-2 * time.Hour).Unix(),
			Duration:   300,
		},
		Formats: []extractor.Format{
			{FormatID: "22", URL: "https://cdn.example.com/v.mp4", Filesize: 2048},
		},
	}
}

type fixture struct {
	svc     *Service
	sources *stubSourceRepo
	videos  *stubVideoRepo
	filters *stubFilterRepo
	ext     *stubExtractor
	feeds   *stubMaterializer
	notify  *stubNotify
}

func newFixture(cfg Config, srcs ...*entity.Source) *fixture {
	videos := newStubVideoRepo()
	f := &fixture{
		sources: newStubSourceRepo(videos, srcs...),
		videos:  videos,
		filters: &stubFilterRepo{},
		ext: &stubExtractor{
			videoMeta: make(map[string]*extractor.VideoMetadata),
			videoErr:  make(map[string]error),
		},
		feeds:  &stubMaterializer{},
		notify: &stubNotify{},
	}
	f.svc = NewService(f.sources, f.videos, f.filters, f.ext, provider.NewRegistry(nil), f.feeds, f.notify, cfg)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

// --- tests ---

func TestFetchSource_ImportsAndRefreshes(t *testing.T) {
	src := youtubeSource()
	f := newFixture(Config{}, src)
	f.ext.sourceMeta = sourceMetaWithEntries()
	f.ext.videoMeta[watchURL1] = videoMetaFor(watchURL1)
	f.ext.videoMeta[watchURL2] = videoMetaFor(watchURL2)

	results, err := f.svc.FetchSource(context.Background(), src.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, results.Sources)
	assert.Equal(t, 2, results.AddedVideos)
	assert.Equal(t, 0, results.DeletedVideos)
	assert.Equal(t, 2, results.RefreshedVideos, "fresh imports have no media url and are refreshed")

	// Source descriptive fields updated from extraction metadata.
	updated, _ := f.sources.Get(context.Background(), src.ID)
	assert.Equal(t, "Space Channel HD", updated.Name)
	assert.Equal(t, "Space Org", updated.Author)
	assert.Empty(t, updated.LastFetchError)

	// Videos stored under deterministic ids with resolved media.
	v, err := f.videos.Get(context.Background(), entity.DeriveID(watchURL1))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/v.mp4", v.MediaURL)
	assert.Equal(t, int64(2048), v.MediaFilesize)

	// Source feed regenerated.
	assert.Equal(t, 1, f.feeds.sourceFeeds)
}

func TestFetchSource_AnnouncesNewVideos(t *testing.T) {
	src := youtubeSource()
	f := newFixture(Config{}, src)
	f.ext.sourceMeta = sourceMetaWithEntries()
	f.ext.videoMeta[watchURL1] = videoMetaFor(watchURL1)
	f.ext.videoMeta[watchURL2] = videoMetaFor(watchURL2)

	results, err := f.svc.FetchSource(context.Background(), src.ID)
	require.NoError(t, err)
	require.Equal(t, 2, results.AddedVideos)
	assert.Equal(t, 2, f.notify.newVideos, "one dispatch per newly stored video")

	// A second fetch re-sees the same entries; nothing new to announce.
	_, err = f.svc.FetchSource(context.Background(), src.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.notify.newVideos)
}

func TestFetchSource_RegeneratesFilterFeeds(t *testing.T) {
	src := youtubeSource()
	f := newFixture(Config{}, src)
	f.ext.sourceMeta = sourceMetaWithEntries()
	f.ext.videoMeta[watchURL1] = videoMetaFor(watchURL1)
	f.ext.videoMeta[watchURL2] = videoMetaFor(watchURL2)

	require.NoError(t, f.filters.Create(context.Background(), &entity.Filter{ID: "f1", SourceID: src.ID, Name: "Launches"}))
	require.NoError(t, f.filters.Create(context.Background(), &entity.Filter{ID: "f2", SourceID: src.ID, Name: "Shorts"}))

	_, err := f.svc.FetchSource(context.Background(), src.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, f.feeds.filterFeeds)
}

func TestFetchSource_ReverseDirectionXOR(t *testing.T) {
	tests := []struct {
		name        string
		sourceFlag  bool
		wantReverse bool // youtube handler default is false
	}{
		{name: "default direction", sourceFlag: false, wantReverse: false},
		{name: "source reversed", sourceFlag: true, wantReverse: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := youtubeSource()
			src.ReverseImportOrder = tt.sourceFlag
			f := newFixture(Config{}, src)
			f.ext.sourceMeta = &extractor.SourceMetadata{Title: "x"}

			_, err := f.svc.FetchSource(context.Background(), src.ID)
			require.NoError(t, err)

			require.Len(t, f.ext.gotSourceParams, 1)
			assert.Equal(t, tt.wantReverse, f.ext.gotSourceParams[0].Reverse)
		})
	}
}

func TestFetchSource_SourceGoneDeactivates(t *testing.T) {
	src := youtubeSource()
	f := newFixture(Config{}, src)
	f.ext.sourceErr = extractor.ErrSourceGone

	_, err := f.svc.FetchSource(context.Background(), src.ID)

	var srcErr *entity.FetchSourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, src.ID, srcErr.SourceID)

	updated, _ := f.sources.Get(context.Background(), src.ID)
	assert.False(t, updated.Active)
	assert.True(t, updated.Deleted)
	assert.NotEmpty(t, updated.LastFetchError)
	assert.Equal(t, 1, f.notify.sourceFailed)
}

func TestFetchSource_UnexpectedExtractionErrorPropagates(t *testing.T) {
	src := youtubeSource()
	f := newFixture(Config{}, src)
	f.ext.sourceErr = errors.New("bridge exploded")

	_, err := f.svc.FetchSource(context.Background(), src.ID)
	require.Error(t, err)

	updated, _ := f.sources.Get(context.Background(), src.ID)
	assert.True(t, updated.Active, "transient failures do not deactivate the source")
	assert.Contains(t, updated.LastFetchError, "bridge exploded")
	assert.Equal(t, 1, f.notify.sourceFailed)
}

func TestFetchSource_UnavailableYoungVideoAbsorbed(t *testing.T) {
	src := youtubeSource()
	f := newFixture(Config{}, src)
	f.ext.sourceMeta = sourceMetaWithEntries()
	f.ext.videoMeta[watchURL1] = videoMetaFor(watchURL1)
	f.ext.videoErr[watchURL2] = extractor.ErrVideoUnavailable

	results, err := f.svc.FetchSource(context.Background(), src.ID)
	require.NoError(t, err, "a young unavailable video cancels the item, not the source")

	assert.Equal(t, 1, results.RefreshedVideos)
	assert.Equal(t, 0, f.notify.fetchErrors, "canceled items are not reported")
}

func TestFetchSource_UnavailableOldVideoReported(t *testing.T) {
	src := youtubeSource()
	old := &entity.Video{
		ID:        entity.DeriveID(watchURL1),
		Handler:   "youtube",
		Title:     "Old premiere",
		URL:       watchURL1,
		CreatedAt: fixedNow.Add(-72 * time.Hour),
		UpdatedAt: fixedNow.Add(-72 * time.Hour),
	}

	f := newFixture(Config{}, src)
	require.NoError(t, f.videos.Create(context.Background(), old))
	require.NoError(t, f.sources.LinkVideo(context.Background(), src.ID, old.ID))

	f.ext.sourceMeta = &extractor.SourceMetadata{Title: "x"}
	f.ext.videoErr[watchURL1] = extractor.ErrVideoUnavailable

	results, err := f.svc.FetchSource(context.Background(), src.ID)
	require.NoError(t, err, "terminal per-video failures do not abort the source")

	assert.Equal(t, 0, results.RefreshedVideos)
	assert.Equal(t, 1, f.notify.fetchErrors, "old unavailable video is a reported hard failure")
}

func TestFetchSource_GraceThresholdConfigurable(t *testing.T) {
	src := youtubeSource()
	young := &entity.Video{
		ID:        entity.DeriveID(watchURL1),
		Handler:   "youtube",
		URL:       watchURL1,
		CreatedAt: fixedNow.Add(-2 * time.Hour),
		UpdatedAt: fixedNow.Add(-2 * time.Hour),
	}

	// With a 1h grace, a 2h-old record is already terminal.
	f := newFixture(Config{NewVideoGrace: time.Hour}, src)
	require.NoError(t, f.videos.Create(context.Background(), young))
	require.NoError(t, f.sources.LinkVideo(context.Background(), src.ID, young.ID))
	f.ext.sourceMeta = &extractor.SourceMetadata{Title: "x"}
	f.ext.videoErr[watchURL1] = extractor.ErrVideoUnavailable

	_, err := f.svc.FetchSource(context.Background(), src.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.notify.fetchErrors)
}

func TestFetchVideo_IntegrityErrorPropagates(t *testing.T) {
	v := &entity.Video{
		ID:        entity.DeriveID(watchURL1),
		Handler:   "youtube",
		URL:       watchURL1,
		CreatedAt: fixedNow.Add(-time.Hour),
	}

	f := newFixture(Config{})
	require.NoError(t, f.videos.Create(context.Background(), v))
	f.videos.updateNotFound = true
	f.ext.videoMeta[watchURL1] = videoMetaFor(watchURL1)

	_, err := f.svc.FetchVideo(context.Background(), v.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.Equal(t, 1, f.notify.integrityErrors)
}

func TestFetchVideo_NotFound(t *testing.T) {
	f := newFixture(Config{})
	_, err := f.svc.FetchVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestFetchAllSources_SkipsNonFetchable(t *testing.T) {
	active := youtubeSource()
	inactive := youtubeSource()
	inactive.ID = "inactive"
	inactive.Active = false
	deleted := youtubeSource()
	deleted.ID = "deleted"
	deleted.Deleted = true

	f := newFixture(Config{}, active, inactive, deleted)
	f.ext.sourceMeta = &extractor.SourceMetadata{Title: "x"}

	results, err := f.svc.FetchAllSources(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, results.Sources, "skipped sources are excluded from the count")
	assert.Len(t, f.ext.gotSourceParams, 1, "skipped sources are never extracted")
	assert.Equal(t, 1, f.sources.listFetchableCalls, "batch lists fetchable sources at the store")
}

func TestFetchAllSources_AbsorbsPerSourceFailure(t *testing.T) {
	bad := youtubeSource()
	f := newFixture(Config{}, bad)
	f.ext.sourceErr = extractor.ErrSourceGone

	results, err := f.svc.FetchAllSources(context.Background())
	require.NoError(t, err, "per-source failures never abort the batch")
	assert.Equal(t, 0, results.Sources)
	assert.Equal(t, 1, f.notify.fetchErrors)
}

func TestFetchAllSources_ContextCanceled(t *testing.T) {
	f := newFixture(Config{}, youtubeSource())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.FetchAllSources(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRefreshVideos_OldestUpdatedFirst(t *testing.T) {
	newer := &entity.Video{
		ID: "n", Handler: "youtube", URL: watchURL1,
		CreatedAt: fixedNow.Add(-time.Hour), UpdatedAt: fixedNow.Add(-time.Hour),
	}
	older := &entity.Video{
		ID: "o", Handler: "youtube", URL: watchURL2,
		CreatedAt: fixedNow.Add(-48 * time.Hour), UpdatedAt: fixedNow.Add(-48 * time.Hour),
	}

	f := newFixture(Config{})
	require.NoError(t, f.videos.Create(context.Background(), newer))
	require.NoError(t, f.videos.Create(context.Background(), older))
	f.ext.videoMeta[watchURL1] = videoMetaFor(watchURL1)
	f.ext.videoMeta[watchURL2] = videoMetaFor(watchURL2)

	results, err := f.svc.RefreshVideos(context.Background(), []*entity.Video{newer, older})
	require.NoError(t, err)

	assert.Equal(t, 2, results.RefreshedVideos)
	assert.Equal(t, []string{watchURL2, watchURL1}, f.ext.videoCalls)
}

func TestFetchSource_OrphanDeletionOptIn(t *testing.T) {
	delisted := &entity.Video{
		ID:        entity.DeriveID(watchURL2),
		Handler:   "youtube",
		URL:       watchURL2,
		MediaURL:  "https://cdn.example.com/old.mp4",
		CreatedAt: fixedNow.Add(-30 * 24 * time.Hour),
		UpdatedAt: fixedNow,
	}
	released := fixedNow.Add(-30 * 24 * time.Hour)
	delisted.ReleasedAt = &released

	meta := &extractor.SourceMetadata{
		Title: "x",
		Entries: []extractor.Entry{
			{Title: "Still listed", WebpageURL: watchURL1, Timestamp: fixedNow.Unix()},
		},
	}

	t.Run("default keeps delisted videos", func(t *testing.T) {
		src := youtubeSource()
		f := newFixture(Config{}, src)
		require.NoError(t, f.videos.Create(context.Background(), delisted))
		require.NoError(t, f.sources.LinkVideo(context.Background(), src.ID, delisted.ID))
		f.ext.sourceMeta = meta
		f.ext.videoMeta[watchURL1] = videoMetaFor(watchURL1)

		results, err := f.svc.FetchSource(context.Background(), src.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, results.DeletedVideos)
		_, err = f.videos.Get(context.Background(), delisted.ID)
		assert.NoError(t, err, "delisted video survives by default")
	})

	t.Run("opt-in removes delisted videos", func(t *testing.T) {
		src := youtubeSource()
		keep := *delisted
		f := newFixture(Config{DeleteOrphans: true}, src)
		require.NoError(t, f.videos.Create(context.Background(), &keep))
		require.NoError(t, f.sources.LinkVideo(context.Background(), src.ID, keep.ID))
		f.ext.sourceMeta = meta
		f.ext.videoMeta[watchURL1] = videoMetaFor(watchURL1)

		results, err := f.svc.FetchSource(context.Background(), src.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, results.DeletedVideos)
		_, err = f.videos.Get(context.Background(), keep.ID)
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}
