package source

import (
	"net/http"
	"time"

	"tubefeed/internal/handler/http/pathutil"
	"tubefeed/internal/handler/http/respond"
)

type VideosHandler struct{ Svc Service }

// videoDTO is the compact listing shape used for a source's video set.
// The full video representation lives in the video handler package.
type videoDTO struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Duration   int        `json:"duration"`
	Thumbnail  string     `json:"thumbnail,omitempty"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	Resolved   bool       `json:"resolved"`
}

func (h VideosHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.PathValue("id"), "")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	videos, err := h.Svc.Videos(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	out := make([]videoDTO, 0, len(videos))
	for _, v := range videos {
		out = append(out, videoDTO{
			ID:         v.ID,
			Title:      v.Title,
			URL:        v.URL,
			Duration:   v.Duration,
			Thumbnail:  v.Thumbnail,
			ReleasedAt: v.ReleasedAt,
			Resolved:   v.Resolved(),
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
