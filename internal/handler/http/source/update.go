package source

import (
	"encoding/json"
	"errors"
	"net/http"

	"tubefeed/internal/handler/http/pathutil"
	"tubefeed/internal/handler/http/respond"
	srcUC "tubefeed/internal/usecase/source"
)

type UpdateHandler struct{ Svc Service }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathutil.ExtractID(r.PathValue("id"), "")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name               string `json:"name"`
		OrderedBy          string `json:"ordered_by"`
		ReverseImportOrder *bool  `json:"reverse_import_order"`
		Active             *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	err = h.Svc.Update(r.Context(), srcUC.UpdateInput{
		ID:                 id,
		Name:               req.Name,
		OrderedBy:          req.OrderedBy,
		ReverseImportOrder: req.ReverseImportOrder,
		Active:             req.Active,
	})
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
