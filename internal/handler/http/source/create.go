package source

import (
	"encoding/json"
	"errors"
	"net/http"

	"tubefeed/internal/handler/http/respond"
	srcUC "tubefeed/internal/usecase/source"
)

type CreateHandler struct{ Svc Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL                string `json:"url"`
		OrderedBy          string `json:"ordered_by"`
		ReverseImportOrder bool   `json:"reverse_import_order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.URL == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("url required"))
		return
	}
	s, err := h.Svc.Create(r.Context(), srcUC.CreateInput{
		URL:                req.URL,
		OrderedBy:          req.OrderedBy,
		ReverseImportOrder: req.ReverseImportOrder,
	})
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusCreated, fromEntity(s))
}
