package provider_test

import (
	"testing"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/extractor"
	"tubefeed/internal/infra/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYouTube_MapVideoMetadata(t *testing.T) {
	t.Parallel()

	yt := provider.NewYouTube(nil)
	meta := &extractor.VideoMetadata{
		Entry: extractor.Entry{
			Title:      "Some upload",
			Uploader:   "creator",
			UploaderID: "UCabc",
			Duration:   187.3,
			Timestamp:  1767225600, // 2026-01-01T00:00:00Z
			Thumbnail:  "https://i.ytimg.com/vi/x/hq.jpg",
		},
		Formats: []extractor.Format{
			{FormatID: "140", URL: "https://cdn/audio"},
			{FormatID: "18", URL: "https://cdn/360", FilesizeApprox: 1234},
			{FormatID: "22", URL: "https://cdn/720", Filesize: 9999},
		},
	}

	v := &entity.Video{ID: "vid1"}
	require.NoError(t, yt.MapVideoMetadata(meta, v))

	assert.Equal(t, "Some upload", v.Title)
	assert.Equal(t, 187, v.Duration)
	assert.Equal(t, "https://cdn/720", v.MediaURL, "720p mp4 is preferred")
	assert.Equal(t, int64(9999), v.MediaFilesize)
	require.NotNil(t, v.ReleasedAt)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), v.ReleasedAt.UTC())
}

func TestYouTube_MapVideoMetadata_FormatNotFound(t *testing.T) {
	t.Parallel()

	yt := provider.NewYouTube(nil)
	meta := &extractor.VideoMetadata{
		Entry:   extractor.Entry{Title: "audio only"},
		Formats: []extractor.Format{{FormatID: "140", URL: "https://cdn/audio"}},
	}

	err := yt.MapVideoMetadata(meta, &entity.Video{})
	assert.ErrorIs(t, err, entity.ErrFormatNotFound)
}

func TestMapSourceMetadata_PreservesUnsetFields(t *testing.T) {
	t.Parallel()

	yt := provider.NewYouTube(nil)
	src := &entity.Source{Name: "old name", Logo: "old logo"}

	yt.MapSourceMetadata(&extractor.SourceMetadata{Title: "new name"}, src)

	assert.Equal(t, "new name", src.Name)
	assert.Equal(t, "old logo", src.Logo, "empty extractor fields never clobber stored values")
}

func TestEntry_ReleasedTime(t *testing.T) {
	t.Parallel()

	withTimestamp := &extractor.Entry{Timestamp: 1767225600, UploadDate: "20200101"}
	released := withTimestamp.ReleasedTime()
	require.NotNil(t, released)
	assert.Equal(t, 2026, released.Year(), "epoch timestamp wins over upload_date")

	withDate := &extractor.Entry{UploadDate: "20260215"}
	released = withDate.ReleasedTime()
	require.NotNil(t, released)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), *released)

	assert.Nil(t, (&extractor.Entry{}).ReleasedTime(), "no provider-declared release stays nil")
}
