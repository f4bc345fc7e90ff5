// Package source provides HTTP handlers for managing tracked channels
// and playlists.
package source

import (
	"context"
	"net/http"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/handler/http/middleware"
	srcUC "tubefeed/internal/usecase/source"
)

// Service is the slice of the source use case consumed by the handlers.
type Service interface {
	List(ctx context.Context) ([]*entity.Source, error)
	Get(ctx context.Context, id string) (*entity.Source, error)
	Create(ctx context.Context, in srcUC.CreateInput) (*entity.Source, error)
	Update(ctx context.Context, in srcUC.UpdateInput) error
	Delete(ctx context.Context, id string) error
	Videos(ctx context.Context, id string) ([]*entity.Video, error)
}

// Fetcher triggers fetch pipeline runs.
type Fetcher interface {
	FetchSource(ctx context.Context, id string) (entity.FetchResults, error)
	FetchAllSources(ctx context.Context) (entity.FetchResults, error)
}

// Register registers all source-related HTTP handlers with the given mux.
// It sets up routes for listing, creating, updating, deleting sources and
// triggering fetches. Fetch triggers are rate limited: each run hits the
// upstream platform with one request per entry.
func Register(mux *http.ServeMux, svc Service, fetcher Fetcher, fetchRateLimiter *middleware.RateLimiter) {
	mux.Handle("GET /sources", ListHandler{svc})
	mux.Handle("POST /sources", CreateHandler{svc})
	mux.Handle("GET /sources/{id}", GetHandler{svc})
	mux.Handle("PUT /sources/{id}", UpdateHandler{svc})
	mux.Handle("DELETE /sources/{id}", DeleteHandler{svc})
	mux.Handle("GET /sources/{id}/videos", VideosHandler{svc})

	mux.Handle("POST /sources/{id}/fetch", fetchRateLimiter.Middleware(FetchHandler{fetcher}))
	mux.Handle("POST /fetch", fetchRateLimiter.Middleware(BatchFetchHandler{fetcher}))
}
