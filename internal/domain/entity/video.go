package entity

import "time"

// Video represents a tracked content item with a stable identity and a
// volatile resolved media reference.
//
// MediaURL and MediaFilesize are TTL-cached facts, not permanent ones:
// they age out per the handler's refresh window and are re-derived on
// demand. ReleasedAt stays nil until the first successful per-video
// metadata resolution. CreatedAt is first-seen bookkeeping, UpdatedAt is
// last-refreshed bookkeeping.
type Video struct {
	ID            string
	Handler       string
	Uploader      string
	UploaderID    string
	Title         string
	Description   string
	Duration      int // seconds, 0 = unknown
	Thumbnail     string
	URL           string
	ReleasedAt    *time.Time
	MediaURL      string
	MediaFilesize int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Resolved reports whether both the media reference and the release
// timestamp have been derived at least once.
func (v *Video) Resolved() bool {
	return v.MediaURL != "" && v.ReleasedAt != nil
}

// Age returns how long the video record has existed, measured from first
// sighting. Failure classification treats young records more leniently.
func (v *Video) Age(now time.Time) time.Duration {
	return now.Sub(v.CreatedAt)
}
