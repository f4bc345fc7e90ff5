package source

import (
	"net/http"

	"tubefeed/internal/handler/http/pathutil"
	"tubefeed/internal/handler/http/respond"
)

type DeleteHandler struct{ Svc Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.PathValue("id"), "")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
