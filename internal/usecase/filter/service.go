// Package filter provides use cases for managing per-source filters and
// their criteria. A filter never outlives its source, and criteria never
// outlive their filter.
package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/feed"
	"tubefeed/internal/repository"
	"tubefeed/internal/usecase/rules"
)

// CreateInput represents the input parameters for creating a filter.
type CreateInput struct {
	SourceID  string
	Name      string
	OrderedBy string
}

// UpdateInput represents the input parameters for updating a filter.
// Empty fields are left unchanged.
type UpdateInput struct {
	ID        string
	Name      string
	OrderedBy string
}

// CriteriaInput represents one criterion to attach to a filter.
type CriteriaInput struct {
	Field    string
	Operator string
	Value    int64
	Keyword  string
	Unit     string
}

// Service provides filter management use cases.
type Service struct {
	Filters repository.FilterRepository
	Sources repository.SourceRepository
	Feeds   feed.Materializer

	now func() time.Time
}

// NewService creates a filter Service.
func NewService(filters repository.FilterRepository, sources repository.SourceRepository, feeds feed.Materializer) *Service {
	return &Service{Filters: filters, Sources: sources, Feeds: feeds, now: time.Now}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// Get retrieves a filter with its criteria.
func (s *Service) Get(ctx context.Context, id string) (*entity.Filter, error) {
	f, err := s.Filters.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get filter: %w", err)
	}
	return f, nil
}

// ListBySource retrieves all filters attached to a source.
func (s *Service) ListBySource(ctx context.Context, sourceID string) ([]*entity.Filter, error) {
	if _, err := s.Sources.Get(ctx, sourceID); err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	filters, err := s.Filters.ListBySource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}
	return filters, nil
}

// Create attaches a new filter to an existing source.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Filter, error) {
	if _, err := s.Sources.Get(ctx, in.SourceID); err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}

	now := s.clock()
	f := &entity.Filter{
		ID:        uuid.NewString(),
		SourceID:  in.SourceID,
		Name:      in.Name,
		OrderedBy: in.OrderedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := s.Filters.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create filter: %w", err)
	}
	return f, nil
}

// Update changes a filter's name or ordering attribute.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*entity.Filter, error) {
	f, err := s.Filters.Get(ctx, in.ID)
	if err != nil {
		return nil, fmt.Errorf("get filter: %w", err)
	}
	if in.Name != "" {
		f.Name = in.Name
	}
	if in.OrderedBy != "" {
		f.OrderedBy = in.OrderedBy
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.UpdatedAt = s.clock()
	if err := s.Filters.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("update filter: %w", err)
	}
	return f, nil
}

// Delete removes the filter, its criteria, and its materialized feed.
func (s *Service) Delete(ctx context.Context, id string) error {
	f, err := s.Filters.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get filter: %w", err)
	}
	if err := s.Filters.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete filter: %w", err)
	}
	if err := s.Feeds.RemoveFilter(ctx, f.SourceID, id); err != nil {
		return fmt.Errorf("remove filter feed: %w", err)
	}
	return nil
}

// AddCriteria validates and appends one criterion to the filter.
func (s *Service) AddCriteria(ctx context.Context, filterID string, in CriteriaInput) (*entity.Criteria, error) {
	if _, err := s.Filters.Get(ctx, filterID); err != nil {
		return nil, fmt.Errorf("get filter: %w", err)
	}
	c, err := entity.NewCriteria(in.Field, in.Operator, in.Value, in.Keyword, in.Unit)
	if err != nil {
		return nil, err
	}
	c.ID = uuid.NewString()
	c.FilterID = filterID
	if err := s.Filters.AddCriteria(ctx, filterID, c); err != nil {
		return nil, fmt.Errorf("add criteria: %w", err)
	}
	return c, nil
}

// RemoveCriteria detaches one criterion by id.
func (s *Service) RemoveCriteria(ctx context.Context, criteriaID string) error {
	if err := s.Filters.RemoveCriteria(ctx, criteriaID); err != nil {
		return fmt.Errorf("remove criteria: %w", err)
	}
	return nil
}

// Preview runs the filter against the source's current videos without
// touching any materialized feed.
func (s *Service) Preview(ctx context.Context, filterID string) ([]*entity.Video, error) {
	f, err := s.Filters.Get(ctx, filterID)
	if err != nil {
		return nil, fmt.Errorf("get filter: %w", err)
	}
	videos, err := s.Sources.Videos(ctx, f.SourceID)
	if err != nil {
		return nil, fmt.Errorf("list source videos: %w", err)
	}
	return rules.FilterVideos(f, videos, s.clock()), nil
}
