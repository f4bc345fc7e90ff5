// Package repository defines the persistence interfaces consumed by
// the use case layer. Implementations live under
// internal/infra/adapter/persistence.
package repository

import (
	"context"

	"tubefeed/internal/domain/entity"
)

// SourceRepository persists sources and their video memberships.
type SourceRepository interface {
	Get(ctx context.Context, id string) (*entity.Source, error)
	GetByURL(ctx context.Context, url string) (*entity.Source, error)
	List(ctx context.Context) ([]*entity.Source, error)
	// ListFetchable returns active, non-deleted sources only.
	ListFetchable(ctx context.Context) ([]*entity.Source, error)
	Create(ctx context.Context, source *entity.Source) error
	Update(ctx context.Context, source *entity.Source) error
	// Delete removes the source, its video links, and (by cascade) its
	// filters. Videos themselves survive: other sources may share them.
	Delete(ctx context.Context, id string) error

	// LinkVideo attaches a video to the source's many-to-many set.
	// Linking an already-linked pair is a no-op.
	LinkVideo(ctx context.Context, sourceID, videoID string) error
	UnlinkVideo(ctx context.Context, sourceID, videoID string) error
	// VideoIDs returns the ids of all videos attached to the source.
	VideoIDs(ctx context.Context, sourceID string) ([]string, error)
	// Videos returns all videos attached to the source.
	Videos(ctx context.Context, sourceID string) ([]*entity.Video, error)
}
