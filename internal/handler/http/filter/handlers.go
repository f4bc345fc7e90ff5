package filter

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"tubefeed/internal/domain/entity"
	"tubefeed/internal/handler/http/pathutil"
	"tubefeed/internal/handler/http/respond"
	filterUC "tubefeed/internal/usecase/filter"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var verr *entity.ValidationError
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrAlreadyExists):
		return http.StatusConflict
	case errors.As(err, &verr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request, name string) (string, error) {
	return pathutil.ExtractID(r.PathValue(name), "")
}

type ListHandler struct{ Svc Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sourceID, err := pathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	filters, err := h.Svc.ListBySource(r.Context(), sourceID)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	out := make([]DTO, 0, len(filters))
	for _, f := range filters {
		out = append(out, fromEntity(f))
	}
	respond.JSON(w, http.StatusOK, out)
}

type CreateHandler struct{ Svc Service }

func (h CreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sourceID, err := pathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name      string `json:"name"`
		OrderedBy string `json:"ordered_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	f, err := h.Svc.Create(r.Context(), filterUC.CreateInput{
		SourceID:  sourceID,
		Name:      req.Name,
		OrderedBy: req.OrderedBy,
	})
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusCreated, fromEntity(f))
}

type GetHandler struct{ Svc Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	f, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, fromEntity(f))
}

type UpdateHandler struct{ Svc Service }

func (h UpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Name      string `json:"name"`
		OrderedBy string `json:"ordered_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	f, err := h.Svc.Update(r.Context(), filterUC.UpdateInput{
		ID:        id,
		Name:      req.Name,
		OrderedBy: req.OrderedBy,
	})
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusOK, fromEntity(f))
}

type DeleteHandler struct{ Svc Service }

func (h DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
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

// PreviewHandler evaluates the filter against the source's current
// videos without touching the materialized feed.
type PreviewHandler struct{ Svc Service }

type previewVideoDTO struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Duration   int        `json:"duration"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

func (h PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	videos, err := h.Svc.Preview(r.Context(), id)
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	out := make([]previewVideoDTO, 0, len(videos))
	for _, v := range videos {
		out = append(out, previewVideoDTO{
			ID:         v.ID,
			Title:      v.Title,
			Duration:   v.Duration,
			ReleasedAt: v.ReleasedAt,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}

type AddCriteriaHandler struct{ Svc Service }

func (h AddCriteriaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	var req struct {
		Field    string `json:"field"`
		Operator string `json:"operator"`
		Value    int64  `json:"value"`
		Keyword  string `json:"keyword"`
		Unit     string `json:"unit_of_measure"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}

	c, err := h.Svc.AddCriteria(r.Context(), id, filterUC.CriteriaInput{
		Field:    req.Field,
		Operator: req.Operator,
		Value:    req.Value,
		Keyword:  req.Keyword,
		Unit:     req.Unit,
	})
	if err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	respond.JSON(w, http.StatusCreated, fromCriteria(c))
}

type RemoveCriteriaHandler struct{ Svc Service }

func (h RemoveCriteriaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := pathID(r, "id"); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	criteriaID, err := pathID(r, "criteria_id")
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Svc.RemoveCriteria(r.Context(), criteriaID); err != nil {
		respond.SafeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
