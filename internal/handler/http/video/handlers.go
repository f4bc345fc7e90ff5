package video

import (
	"errors"
	"net/http"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/handler/http/pathutil"
	"tubefeed/internal/handler/http/respond"
)

type ListHandler struct{ Repo Repository }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	videos, err := h.Repo.List(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]DTO, 0, len(videos))
	for _, v := range videos {
		out = append(out, fromEntity(v))
	}
	respond.JSON(w, http.StatusOK, out)
}

type GetHandler struct{ Repo Repository }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.PathValue("id"), "")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	v, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, fromEntity(v))
}

// RefreshHandler re-runs metadata extraction for one video. A transient
// extraction outcome (young video not yet available upstream) answers
// 202 so the caller knows the record stands and the next cycle retries.
type RefreshHandler struct{ Refresher Refresher }

func (h RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.PathValue("id"), "")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	v, err := h.Refresher.FetchVideo(r.Context(), id)
	if err != nil {
		var canceled *entity.FetchCanceledError
		if errors.As(err, &canceled) {
			respond.JSON(w, http.StatusAccepted, map[string]string{
				"detail": canceled.Reason,
			})
			return
		}
		code := http.StatusInternalServerError
		if errors.Is(err, entity.ErrNotFound) {
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}
	respond.JSON(w, http.StatusOK, fromEntity(v))
}
