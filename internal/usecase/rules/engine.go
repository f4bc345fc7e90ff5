// Package rules implements the criteria rule engine: per-criterion
// predicate evaluation and filter-level two-phase composition over
// video collections. Everything here is pure and synchronous; the fetch
// orchestrator populates the data this engine reads, and the feed
// materializer consumes what it returns.
package rules

import (
	"regexp"
	"strings"
	"time"

	"tubefeed/internal/domain/entity"
)

// Matches evaluates a single criterion against one video.
//
// released/created compare the video's timestamp against a window
// ending at now. duration compares seconds-normalized values, and a
// video with no known duration always matches: unresolved metadata must
// not silently hide it. keyword does a case-insensitive word-boundary
// match against the title.
func Matches(c *entity.Criteria, v *entity.Video, now time.Time) bool {
	switch c.Field {
	case entity.FieldReleased:
		if v.ReleasedAt == nil {
			return false
		}
		return !v.ReleasedAt.Before(now.Add(-c.Window()))
	case entity.FieldCreated:
		return !v.CreatedAt.Before(now.Add(-c.Window()))
	case entity.FieldDuration:
		if v.Duration == 0 {
			return true
		}
		if c.Operator == entity.OpShorterThan {
			return int64(v.Duration) <= c.Seconds()
		}
		return int64(v.Duration) > c.Seconds()
	case entity.FieldKeyword:
		hit := titleContainsWord(v.Title, c.Keyword)
		if c.Operator == entity.OpMustContain {
			return hit
		}
		return !hit
	}
	return false
}

func titleContainsWord(title, keyword string) bool {
	pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(keyword)) + `\b`)
	return pattern.MatchString(title)
}

// FilterVideos applies a filter's criteria to a candidate list using
// the two-phase OR-then-AND composition:
//
//  1. must-contain-keyword criteria are evaluated over the full list
//     and their deduplicated union seeds the result (alternative
//     topics, OR). With none present the seed is the full list.
//  2. Candidates without a release timestamp are dropped; unresolved
//     videos never reach a feed.
//  3. Every remaining criterion narrows the seed sequentially (AND).
//     must-contain-keyword criteria are not reapplied.
//  4. With OrderedBy set, the final set is stable-sorted descending.
//
// Both passes are non-mutating; the input slice is never reordered.
func FilterVideos(f *entity.Filter, videos []*entity.Video, now time.Time) []*entity.Video {
	seeds, narrowing := partition(f.Criteria)

	selected := seed(seeds, videos, now)
	selected = released(selected)
	selected = narrow(narrowing, selected, now)

	if f.OrderedBy != "" {
		selected = entity.VideosSorted(selected, f.OrderedBy)
	}
	return selected
}

// partition splits criteria into must-contain-keyword seeds and
// everything else.
func partition(criteria []*entity.Criteria) (seeds, narrowing []*entity.Criteria) {
	for _, c := range criteria {
		if c.Field == entity.FieldKeyword && c.Operator == entity.OpMustContain {
			seeds = append(seeds, c)
		} else {
			narrowing = append(narrowing, c)
		}
	}
	return seeds, narrowing
}

// seed builds the phase-one candidate set: the deduplicated union of
// every seed criterion's matches, or the full list when no seeds exist.
func seed(seeds []*entity.Criteria, videos []*entity.Video, now time.Time) []*entity.Video {
	if len(seeds) == 0 {
		out := make([]*entity.Video, len(videos))
		copy(out, videos)
		return out
	}

	seen := make(map[string]bool, len(videos))
	var out []*entity.Video
	for _, c := range seeds {
		for _, v := range videos {
			if seen[v.ID] || !Matches(c, v, now) {
				continue
			}
			seen[v.ID] = true
			out = append(out, v)
		}
	}
	return out
}

func released(videos []*entity.Video) []*entity.Video {
	out := make([]*entity.Video, 0, len(videos))
	for _, v := range videos {
		if v.ReleasedAt != nil {
			out = append(out, v)
		}
	}
	return out
}

// narrow applies each criterion as a sequential AND pass.
func narrow(criteria []*entity.Criteria, videos []*entity.Video, now time.Time) []*entity.Video {
	out := videos
	for _, c := range criteria {
		kept := make([]*entity.Video, 0, len(out))
		for _, v := range out {
			if Matches(c, v, now) {
				kept = append(kept, v)
			}
		}
		out = kept
	}
	return out
}
