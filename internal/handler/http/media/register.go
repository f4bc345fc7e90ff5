// Package media exposes resolved video media over HTTP, either by
// redirect or by proxying through the service, depending on the
// source's platform handler.
package media

import (
	"net/http"

	"tubefeed/internal/handler/http/pathutil"
	"tubefeed/internal/handler/http/respond"
)

// Streamer resolves a video's media reference and writes the response:
// a redirect for direct platforms, a proxied stream otherwise.
type Streamer interface {
	ServeVideo(w http.ResponseWriter, r *http.Request, videoID string)
}

// Register registers the media delivery handler with the given mux.
func Register(mux *http.ServeMux, streamer Streamer) {
	mux.Handle("GET /media/{id}", Handler{streamer})
	mux.Handle("HEAD /media/{id}", Handler{streamer})
}

// Handler delegates media delivery to the guard.
type Handler struct{ Streamer Streamer }

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.PathValue("id"), "")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	h.Streamer.ServeVideo(w, r, id)
}
