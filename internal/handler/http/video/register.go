// Package video provides HTTP handlers for inspecting and refreshing
// tracked videos.
package video

import (
	"context"
	"net/http"

	"tubefeed/internal/domain/entity"
)

// Repository is the read-side slice of the video store used by the
// handlers.
type Repository interface {
	Get(ctx context.Context, id string) (*entity.Video, error)
	List(ctx context.Context) ([]*entity.Video, error)
}

// Refresher re-derives one video's metadata through the extractor.
type Refresher interface {
	FetchVideo(ctx context.Context, id string) (*entity.Video, error)
}

// Register registers all video-related HTTP handlers with the given mux.
func Register(mux *http.ServeMux, repo Repository, refresher Refresher) {
	mux.Handle("GET /videos", ListHandler{repo})
	mux.Handle("GET /videos/{id}", GetHandler{repo})
	mux.Handle("POST /videos/{id}/refresh", RefreshHandler{refresher})
}
