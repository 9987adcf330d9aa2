// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jastipku/jastipku/internal/platform/docstore"
	"github.com/jastipku/jastipku/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	detail := ""
	var userErr *shared.UserError
	if errors.As(err, &userErr) {
		detail = userErr.Message
	}
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, shared.ErrNotAuthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", orDefault(detail, shared.MsgNotAuthenticated))
	case errors.Is(err, shared.ErrPermissionDenied):
		Problem(w, http.StatusForbidden, "Forbidden", orDefault(detail, shared.MsgPermissionDenied))
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, docstore.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", orDefault(detail, "Data tidak ditemukan"))
	case errors.As(err, &validationErrs):
		Problem(w, http.StatusBadRequest, "Validation Failed", validationErrs.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", detail)
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
