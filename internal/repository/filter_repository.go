package repository

import (
	"context"

	"tubefeed/internal/domain/entity"
)

// FilterRepository persists filters together with their ordered
// criteria. Criteria have no life of their own: they are written and
// deleted with the owning filter.
type FilterRepository interface {
	// Get returns the filter with its criteria loaded, in order.
	Get(ctx context.Context, id string) (*entity.Filter, error)
	ListBySource(ctx context.Context, sourceID string) ([]*entity.Filter, error)
	Create(ctx context.Context, filter *entity.Filter) error
	Update(ctx context.Context, filter *entity.Filter) error
	Delete(ctx context.Context, id string) error

	// AddCriteria appends a criterion to the filter's ordered set.
	AddCriteria(ctx context.Context, filterID string, criteria *entity.Criteria) error
	RemoveCriteria(ctx context.Context, criteriaID string) error
}
