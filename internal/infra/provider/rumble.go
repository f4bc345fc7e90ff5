package provider

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/extractor"
)

// Rumble is the handler for rumble.com channels and videos.
type Rumble struct {
	settings Settings
}

// NewRumble creates the Rumble handler with its default settings, then
// applies any overrides. Rumble playlists paginate oldest-first, so the
// default import direction is reversed.
func NewRumble(overrides *HandlerConfig) *Rumble {
	settings := Settings{
		RefreshInterval: 12 * time.Hour,
		RefreshRecent:   30 * 24 * time.Hour,
		UseProxy:        false,
		ReverseDefault:  true,
		MaxCount:        30,
		DateFloorDays:   0,
	}
	return &Rumble{settings: applyOverrides(settings, overrides)}
}

func (r *Rumble) Name() string { return "rumble" }

func (r *Rumble) Domains() []string {
	return []string{"rumble.com", "www.rumble.com"}
}

// SanitizeSourceURL keeps only the channel or user path, without query
// or trailing slash.
func (r *Rumble) SanitizeSourceURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse rumble source url: %w", err)
	}
	path := strings.TrimRight(u.Path, "/")
	if strings.HasPrefix(path, "/c/") || strings.HasPrefix(path, "/user/") {
		return "https://rumble.com" + path, nil
	}
	return "", fmt.Errorf("unrecognized rumble source url: %s", rawURL)
}

// SanitizeVideoURL strips query and fragment from a video page URL.
func (r *Rumble) SanitizeVideoURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse rumble video url: %w", err)
	}
	path := strings.TrimRight(u.Path, "/")
	if !strings.HasPrefix(path, "/v") || path == "/v" {
		return "", fmt.Errorf("unrecognized rumble video url: %s", rawURL)
	}
	return "https://rumble.com" + path, nil
}

func (r *Rumble) SourceParams(now time.Time) extractor.Params {
	params := extractor.Params{
		Flatten:  true,
		Reverse:  r.settings.ReverseDefault,
		MaxCount: r.settings.MaxCount,
	}
	if r.settings.DateFloorDays > 0 {
		params.DateFloor = now.AddDate(0, 0, -r.settings.DateFloorDays)
	}
	return params
}

var rumbleFormats = []string{"mp4-720p", "mp4-480p", "mp4-360p"}

func (r *Rumble) MapSourceMetadata(meta *extractor.SourceMetadata, src *entity.Source) {
	mapSourceMetadata(meta, src)
}

func (r *Rumble) MapVideoMetadata(meta *extractor.VideoMetadata, v *entity.Video) error {
	return mapVideoMetadata(meta, v, rumbleFormats)
}

func (r *Rumble) Settings() Settings { return r.settings }
