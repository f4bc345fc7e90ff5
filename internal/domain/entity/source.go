package entity

import (
	"sort"
	"time"
)

// Ordering attributes for a Source's (or Filter's) video listing.
const (
	OrderedByReleasedAt = "released_at"
	OrderedByCreatedAt  = "created_at"
)

// Source represents a tracked external channel or playlist.
// Its identity is a deterministic hash of the sanitized URL, so creating
// the same URL twice resolves to the same row. A Source owns Videos
// (many-to-many) and Filters (one-to-many, cascade delete).
type Source struct {
	ID                 string
	URL                string
	Name               string
	Author             string
	Logo               string
	Description        string
	OrderedBy          string // released_at | created_at
	Handler            string // provider handler name, e.g. "youtube"
	ReverseImportOrder bool
	Active             bool
	Deleted            bool
	LastFetchError     string
	OwnerID            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Fetchable reports whether the source participates in bulk fetches.
// Soft-deleted and inactive sources are skipped entirely, including in
// the aggregate source count.
func (s *Source) Fetchable() bool {
	return s.Active && !s.Deleted
}

// Validate checks the Source's ordering attribute and URL.
func (s *Source) Validate() error {
	if s.OrderedBy != OrderedByReleasedAt && s.OrderedBy != OrderedByCreatedAt {
		return &ValidationError{
			Field:   "ordered_by",
			Message: "must be released_at or created_at",
		}
	}
	return ValidateURL(s.URL)
}

// VideosSorted returns a copy of videos stable-sorted descending by the
// given ordering attribute. Videos without a release timestamp sort last
// under released_at ordering.
func VideosSorted(videos []*Video, orderedBy string) []*Video {
	sorted := make([]*Video, len(videos))
	copy(sorted, videos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if orderedBy == OrderedByCreatedAt {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		ri, rj := sorted[i].ReleasedAt, sorted[j].ReleasedAt
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return ri.After(*rj)
		}
	})
	return sorted
}
