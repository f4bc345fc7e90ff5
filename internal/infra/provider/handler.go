// Package provider implements per-provider extraction handlers.
// Each handler declares how to sanitize its URLs, which extraction
// parameters to use, how raw extractor metadata maps onto domain
// entities, and how often resolved media references go stale.
// Handlers are selected through a static registry keyed by name and by
// URL domain.
package provider

import (
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/extractor"
)

// Settings are the per-handler refresh and delivery knobs. Defaults are
// declared by each handler and may be overridden from the handlers
// config file.
type Settings struct {
	RefreshInterval time.Duration // media references older than this are stale
	RefreshRecent   time.Duration // only videos released within this window are re-refreshed
	UseProxy        bool          // stream media through the reverse proxy
	ReverseDefault  bool          // default playlist direction
	MaxCount        int
	DateFloorDays   int
}

// Handler is the capability interface implemented per provider.
// Sanitize functions must be pure and idempotent: ids derive from
// sanitized URLs, so sanitize(sanitize(x)) == sanitize(x) must hold.
type Handler interface {
	// Name returns the registry key, e.g. "youtube".
	Name() string

	// Domains returns the URL hostnames this handler claims.
	Domains() []string

	// SanitizeSourceURL canonicalizes a channel/playlist URL.
	SanitizeSourceURL(rawURL string) (string, error)

	// SanitizeVideoURL canonicalizes a single-video URL.
	SanitizeVideoURL(rawURL string) (string, error)

	// SourceParams returns the extraction parameters for a source fetch,
	// with the date floor resolved against now.
	SourceParams(now time.Time) extractor.Params

	// MapSourceMetadata applies extracted channel metadata onto the
	// source's mutable descriptive fields.
	MapSourceMetadata(meta *extractor.SourceMetadata, src *entity.Source)

	// MapVideoMetadata applies resolved video metadata, including the
	// selected media format, onto the video. Returns
	// entity.ErrFormatNotFound when no preferred format is present.
	MapVideoMetadata(meta *extractor.VideoMetadata, v *entity.Video) error

	// Settings returns the handler's effective refresh/delivery settings.
	Settings() Settings
}

// mapSourceMetadata is the mapping shared by all current handlers.
func mapSourceMetadata(meta *extractor.SourceMetadata, src *entity.Source) {
	if meta.Title != "" {
		src.Name = meta.Title
	}
	if meta.Uploader != "" {
		src.Author = meta.Uploader
	}
	if meta.Logo != "" {
		src.Logo = meta.Logo
	}
	if meta.Description != "" {
		src.Description = meta.Description
	}
}

// mapVideoMetadata applies entry-level fields and selects the first
// media format whose id appears in formatIDs, in preference order.
func mapVideoMetadata(meta *extractor.VideoMetadata, v *entity.Video, formatIDs []string) error {
	v.Title = meta.Title
	v.Description = meta.Description
	v.Uploader = meta.Uploader
	v.UploaderID = meta.UploaderID
	v.Thumbnail = meta.Thumbnail
	if meta.Duration > 0 {
		v.Duration = int(meta.Duration)
	}
	if released := meta.ReleasedTime(); released != nil {
		v.ReleasedAt = released
	}

	for _, want := range formatIDs {
		for i := range meta.Formats {
			f := &meta.Formats[i]
			if f.FormatID == want && f.URL != "" {
				v.MediaURL = f.URL
				v.MediaFilesize = f.Size()
				return nil
			}
		}
	}
	return entity.ErrFormatNotFound
}
