package provider

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/extractor"
)

// YouTube is the handler for youtube.com channels, playlists, and videos.
type YouTube struct {
	settings Settings
}

// NewYouTube creates the YouTube handler with its default settings, then
// applies any overrides.
func NewYouTube(overrides *HandlerConfig) *YouTube {
	settings := Settings{
		RefreshInterval: 6 * time.Hour,
		RefreshRecent:   14 * 24 * time.Hour,
		UseProxy:        true,
		ReverseDefault:  false,
		MaxCount:        50,
		DateFloorDays:   0,
	}
	return &YouTube{settings: applyOverrides(settings, overrides)}
}

func (y *YouTube) Name() string { return "youtube" }

func (y *YouTube) Domains() []string {
	return []string{"youtube.com", "www.youtube.com", "m.youtube.com", "youtu.be"}
}

// SanitizeSourceURL canonicalizes channel, handle, and playlist URLs.
// Playlists keep only the list parameter; channels and handles keep only
// their path. The result is stable under repeated application.
func (y *YouTube) SanitizeSourceURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse youtube source url: %w", err)
	}

	if list := u.Query().Get("list"); list != "" {
		return "https://www.youtube.com/playlist?list=" + list, nil
	}

	path := strings.TrimRight(u.Path, "/")
	switch {
	case strings.HasPrefix(path, "/channel/"), strings.HasPrefix(path, "/c/"),
		strings.HasPrefix(path, "/user/"), strings.HasPrefix(path, "/@"):
		return "https://www.youtube.com" + path, nil
	}
	return "", fmt.Errorf("unrecognized youtube source url: %s", rawURL)
}

// SanitizeVideoURL reduces any watch/short/youtu.be form to the
// canonical watch URL keyed by video id.
func (y *YouTube) SanitizeVideoURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse youtube video url: %w", err)
	}

	var id string
	switch {
	case u.Host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case strings.HasPrefix(u.Path, "/shorts/"):
		id = strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/")
	default:
		id = u.Query().Get("v")
	}
	if id == "" {
		return "", fmt.Errorf("no video id in youtube url: %s", rawURL)
	}
	return "https://www.youtube.com/watch?v=" + id, nil
}

func (y *YouTube) SourceParams(now time.Time) extractor.Params {
	params := extractor.Params{
		Flatten:  true,
		Reverse:  y.settings.ReverseDefault,
		MaxCount: y.settings.MaxCount,
	}
	if y.settings.DateFloorDays > 0 {
		params.DateFloor = now.AddDate(0, 0, -y.settings.DateFloorDays)
	}
	return params
}

// youtubeFormats is the preferred progressive (audio+video) format
// order: 720p mp4, then 360p mp4.
var youtubeFormats = []string{"22", "18"}

func (y *YouTube) MapSourceMetadata(meta *extractor.SourceMetadata, src *entity.Source) {
	mapSourceMetadata(meta, src)
}

func (y *YouTube) MapVideoMetadata(meta *extractor.VideoMetadata, v *entity.Video) error {
	return mapVideoMetadata(meta, v, youtubeFormats)
}

func (y *YouTube) Settings() Settings { return y.settings }
