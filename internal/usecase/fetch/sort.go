package fetch

import (
	"sort"

	"tubefeed/internal/domain/entity"
)

// sortOldestUpdatedFirst orders videos so the longest-unrefreshed item
// is handled first. Stable so ties keep their input order.
func sortOldestUpdatedFirst(videos []*entity.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].UpdatedAt.Before(videos[j].UpdatedAt)
	})
}
