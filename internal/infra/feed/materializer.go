// Package feed renders rule-engine output into feed artifacts on disk.
package feed

import (
	"context"

	"tubefeed/internal/domain/entity"
)

// Materializer regenerates the feed artifacts consumed by podcast
// clients. The fetch orchestrator calls it after every source fetch;
// the source use case removes artifacts when a source is deleted.
type Materializer interface {
	// WriteSourceFeed renders the source's full video set.
	WriteSourceFeed(ctx context.Context, source *entity.Source, videos []*entity.Video) error

	// WriteFilterFeed renders one filter's selected subset.
	WriteFilterFeed(ctx context.Context, source *entity.Source, filter *entity.Filter, videos []*entity.Video) error

	// RemoveSource deletes the source feed and every filter feed under it.
	RemoveSource(ctx context.Context, sourceID string) error

	// RemoveFilter deletes one filter feed.
	RemoveFilter(ctx context.Context, sourceID, filterID string) error
}
