// Package source provides use cases for managing tracked channels and
// playlists. Creation is idempotent: source identity derives from the
// sanitized URL, so re-adding a known URL signals a duplicate instead
// of creating a second row.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/infra/feed"
	"tubefeed/internal/infra/provider"
	"tubefeed/internal/repository"
)

// CreateInput represents the input parameters for creating a source.
type CreateInput struct {
	URL                string
	OrderedBy          string
	ReverseImportOrder bool
	OwnerID            string
}

// UpdateInput represents the input parameters for updating a source.
// Empty string fields and nil flags are left unchanged.
type UpdateInput struct {
	ID                 string
	Name               string
	OrderedBy          string
	ReverseImportOrder *bool
	Active             *bool
}

// Service provides source management use cases.
type Service struct {
	Sources   repository.SourceRepository
	Providers *provider.Registry
	Feeds     feed.Materializer

	now func() time.Time
}

// NewService creates a source Service.
func NewService(sources repository.SourceRepository, providers *provider.Registry, feeds feed.Materializer) *Service {
	return &Service{Sources: sources, Providers: providers, Feeds: feeds, now: time.Now}
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// List retrieves all sources.
func (s *Service) List(ctx context.Context) ([]*entity.Source, error) {
	sources, err := s.Sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// Get retrieves one source by id.
func (s *Service) Get(ctx context.Context, id string) (*entity.Source, error) {
	src, err := s.Sources.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	return src, nil
}

// Create registers a source from its URL. The handler is selected by
// the URL's domain, the URL is sanitized, and the id derives from the
// sanitized form. A duplicate URL returns entity.ErrAlreadyExists.
// Name, author, and logo are filled in by the first fetch.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Source, error) {
	if in.URL == "" {
		return nil, &entity.ValidationError{Field: "url", Message: "is required"}
	}
	if err := entity.ValidateURL(in.URL); err != nil {
		return nil, fmt.Errorf("validate source URL: %w", err)
	}

	handler, err := s.Providers.ForURL(in.URL)
	if err != nil {
		return nil, &entity.ValidationError{Field: "url", Message: err.Error()}
	}

	sanitized, err := handler.SanitizeSourceURL(in.URL)
	if err != nil {
		return nil, &entity.ValidationError{Field: "url", Message: err.Error()}
	}

	orderedBy := in.OrderedBy
	if orderedBy == "" {
		orderedBy = entity.OrderedByReleasedAt
	}

	now := s.clock()
	src := &entity.Source{
		ID:                 entity.DeriveID(sanitized),
		URL:                sanitized,
		OrderedBy:          orderedBy,
		Handler:            handler.Name(),
		ReverseImportOrder: in.ReverseImportOrder,
		Active:             true,
		OwnerID:            in.OwnerID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := src.Validate(); err != nil {
		return nil, err
	}

	if err := s.Sources.Create(ctx, src); err != nil {
		if errors.Is(err, entity.ErrAlreadyExists) {
			return nil, fmt.Errorf("source %s: %w", src.ID, entity.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("create source: %w", err)
	}
	return src, nil
}

// Update modifies a source. Empty fields are left unchanged.
func (s *Service) Update(ctx context.Context, in UpdateInput) error {
	if in.ID == "" {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}

	src, err := s.Sources.Get(ctx, in.ID)
	if err != nil {
		return fmt.Errorf("get source: %w", err)
	}

	if in.Name != "" {
		src.Name = in.Name
	}
	if in.OrderedBy != "" {
		src.OrderedBy = in.OrderedBy
	}
	if in.ReverseImportOrder != nil {
		src.ReverseImportOrder = *in.ReverseImportOrder
	}
	if in.Active != nil {
		src.Active = *in.Active
	}
	src.UpdatedAt = s.clock()

	if err := src.Validate(); err != nil {
		return err
	}
	if err := s.Sources.Update(ctx, src); err != nil {
		return fmt.Errorf("update source: %w", err)
	}
	return nil
}

// Videos returns the source's videos in the source's display order.
func (s *Service) Videos(ctx context.Context, id string) ([]*entity.Video, error) {
	src, err := s.Sources.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	videos, err := s.Sources.Videos(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list source videos: %w", err)
	}
	return entity.VideosSorted(videos, src.OrderedBy), nil
}

// Delete removes a source and its generated feed artifacts. Filters
// go with the source by cascade; videos survive because other sources
// may share them.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &entity.ValidationError{Field: "id", Message: "is required"}
	}

	if err := s.Sources.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	if err := s.Feeds.RemoveSource(ctx, id); err != nil {
		return fmt.Errorf("remove feed artifacts for source %s: %w", id, err)
	}
	return nil
}
