package source

import (
	"errors"
	"net/http"

	"tubefeed/internal/domain/entity"
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
