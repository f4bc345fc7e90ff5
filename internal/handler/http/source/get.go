package source

import (
	"net/http"

	"tubefeed/internal/handler/http/pathutil"
	"tubefeed/internal/handler/http/respond"
)

type GetHandler struct{ Svc Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.PathValue("id"), "")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	s, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, fromEntity(s))
}
