package repository

import (
	"context"

	"tubefeed/internal/domain/entity"
)

// VideoRepository persists videos. Video rows are keyed by the
// deterministic hash of the sanitized URL, so Create of a known id
// reports entity.ErrAlreadyExists.
type VideoRepository interface {
	Get(ctx context.Context, id string) (*entity.Video, error)
	List(ctx context.Context) ([]*entity.Video, error)
	Create(ctx context.Context, video *entity.Video) error
	Update(ctx context.Context, video *entity.Video) error
	Delete(ctx context.Context, id string) error
	// ExistsByIDBatch reports which of the given ids are already known,
	// in one round trip.
	ExistsByIDBatch(ctx context.Context, ids []string) (map[string]bool, error)
}
