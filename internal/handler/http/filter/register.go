// Package filter provides HTTP handlers for per-source filters and
// their criteria.
package filter

import (
	"context"
	"net/http"

	"tubefeed/internal/domain/entity"
	filterUC "tubefeed/internal/usecase/filter"
)

// Service is the slice of the filter use case consumed by the handlers.
type Service interface {
	Get(ctx context.Context, id string) (*entity.Filter, error)
	ListBySource(ctx context.Context, sourceID string) ([]*entity.Filter, error)
	Create(ctx context.Context, in filterUC.CreateInput) (*entity.Filter, error)
	Update(ctx context.Context, in filterUC.UpdateInput) (*entity.Filter, error)
	Delete(ctx context.Context, id string) error
	AddCriteria(ctx context.Context, filterID string, in filterUC.CriteriaInput) (*entity.Criteria, error)
	RemoveCriteria(ctx context.Context, criteriaID string) error
	Preview(ctx context.Context, filterID string) ([]*entity.Video, error)
}

// Register registers all filter-related HTTP handlers with the given mux.
func Register(mux *http.ServeMux, svc Service) {
	mux.Handle("GET /sources/{id}/filters", ListHandler{svc})
	mux.Handle("POST /sources/{id}/filters", CreateHandler{svc})

	mux.Handle("GET /filters/{id}", GetHandler{svc})
	mux.Handle("PUT /filters/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /filters/{id}", DeleteHandler{svc})
	mux.Handle("GET /filters/{id}/videos", PreviewHandler{svc})

	mux.Handle("POST /filters/{id}/criteria", AddCriteriaHandler{svc})
	mux.Handle("DELETE /filters/{id}/criteria/{criteria_id}", RemoveCriteriaHandler{svc})
}
