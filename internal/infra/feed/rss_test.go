package feed

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tubefeed/internal/domain/entity"
)

func testVideos() []*entity.Video {
	released := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	return []*entity.Video{
		{
			ID:            "vid1",
			Title:         "First video",
			URL:           "https://www.youtube.com/watch?v=vid1",
			Duration:      300,
			ReleasedAt:    &released,
			MediaURL:      "https://cdn.example.com/vid1.mp4",
			MediaFilesize: 1024,
		},
		{
			ID:    "vid2",
			Title: "Unresolved video",
			URL:   "https://www.youtube.com/watch?v=vid2",
		},
	}
}

func TestRSSMaterializer_WriteSourceFeed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewRSSMaterializer(dir, "https://feeds.example.com")

	src := &entity.Source{ID: "src1", Name: "Space Channel", URL: "https://www.youtube.com/@space", Logo: "https://img.example.com/logo.png"}
	require.NoError(t, m.WriteSourceFeed(context.Background(), src, testVideos()))

	data, err := os.ReadFile(filepath.Join(dir, "src1.xml"))
	require.NoError(t, err)

	var parsed rssFeed
	require.NoError(t, xml.Unmarshal(data, &parsed))

	assert.Equal(t, "2.0", parsed.Version)
	assert.Equal(t, "Space Channel", parsed.Channel.Title)
	require.Len(t, parsed.Channel.Items, 2)

	withMedia := parsed.Channel.Items[0]
	require.NotNil(t, withMedia.Enclosure)
	assert.Equal(t, "https://feeds.example.com/media/vid1", withMedia.Enclosure.URL)
	assert.Equal(t, int64(1024), withMedia.Enclosure.Length)

	assert.Nil(t, parsed.Channel.Items[1].Enclosure, "unresolved video carries no enclosure")
}

func TestRSSMaterializer_WriteFilterFeed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewRSSMaterializer(dir, "https://feeds.example.com")

	src := &entity.Source{ID: "src1", Name: "Space Channel", URL: "https://www.youtube.com/@space"}
	f := &entity.Filter{ID: "f1", SourceID: "src1", Name: "Launches"}
	require.NoError(t, m.WriteFilterFeed(context.Background(), src, f, testVideos()[:1]))

	data, err := os.ReadFile(filepath.Join(dir, "src1", "f1.xml"))
	require.NoError(t, err)

	var parsed rssFeed
	require.NoError(t, xml.Unmarshal(data, &parsed))
	assert.Equal(t, "Space Channel - Launches", parsed.Channel.Title)
	assert.Len(t, parsed.Channel.Items, 1)
}

func TestRSSMaterializer_RemoveSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewRSSMaterializer(dir, "https://feeds.example.com")
	ctx := context.Background()

	src := &entity.Source{ID: "src1", Name: "Space Channel", URL: "https://www.youtube.com/@space"}
	f := &entity.Filter{ID: "f1", SourceID: "src1", Name: "Launches"}
	require.NoError(t, m.WriteSourceFeed(ctx, src, nil))
	require.NoError(t, m.WriteFilterFeed(ctx, src, f, nil))

	require.NoError(t, m.RemoveSource(ctx, "src1"))

	_, err := os.Stat(filepath.Join(dir, "src1.xml"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "src1"))
	assert.True(t, os.IsNotExist(err))

	// Removing an absent source is a no-op.
	assert.NoError(t, m.RemoveSource(ctx, "missing"))
}

func TestRSSMaterializer_RemoveFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	m := NewRSSMaterializer(dir, "https://feeds.example.com")
	ctx := context.Background()

	src := &entity.Source{ID: "src1", Name: "Space Channel", URL: "https://www.youtube.com/@space"}
	f := &entity.Filter{ID: "f1", SourceID: "src1", Name: "Launches"}
	require.NoError(t, m.WriteFilterFeed(ctx, src, f, nil))

	require.NoError(t, m.RemoveFilter(ctx, "src1", "f1"))
	_, err := os.Stat(filepath.Join(dir, "src1", "f1.xml"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, m.RemoveFilter(ctx, "src1", "missing"))
}
