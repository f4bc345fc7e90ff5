package source

import (
	"net/http"

	"tubefeed/internal/handler/http/respond"
)

type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.List(r.Context())
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	out := make([]DTO, 0, len(list))
	for _, s := range list {
		out = append(out, fromEntity(s))
	}
	respond.JSON(w, http.StatusOK, out)
}
