package fetch

import (
	"sort"
	"strings"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/provider"
)

// Title markers of videos that upstream has already pulled. Such
// records are never worth re-fetching, stale or not.
var excludedTitleMarkers = []string{"deleted", "private"}

// NeedsRefresh reports whether a video's media reference must be
// re-derived. A video needs refresh when its media URL was never
// resolved, its release moment is unknown, or its last refresh is
// older than the handler's refresh interval while the video is still
// recent enough to care about. Fully-resolved old videos are left
// alone to bound refresh cost.
func NeedsRefresh(v *entity.Video, settings provider.Settings, now time.Time) bool {
	if v.MediaURL == "" {
		return true
	}
	if v.ReleasedAt == nil {
		return true
	}
	if v.UpdatedAt.Before(now.Add(-settings.RefreshInterval)) {
		return v.ReleasedAt.After(now.Add(-settings.RefreshRecent))
	}
	return false
}

// excludedByTitle reports whether the title marks the video as pulled
// upstream (case-insensitive).
func excludedByTitle(v *entity.Video) bool {
	lower := strings.ToLower(v.Title)
	for _, marker := range excludedTitleMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// SelectStale returns the videos needing refresh, oldest-updated-first,
// excluding deleted/private titles. The input slice is not mutated.
func SelectStale(videos []*entity.Video, settings provider.Settings, now time.Time) []*entity.Video {
	var stale []*entity.Video
	for _, v := range videos {
		if excludedByTitle(v) {
			continue
		}
		if NeedsRefresh(v, settings, now) {
			stale = append(stale, v)
		}
	}
	sort.SliceStable(stale, func(i, j int) bool {
		return stale[i].UpdatedAt.Before(stale[j].UpdatedAt)
	})
	return stale
}
