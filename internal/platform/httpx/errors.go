package httpx

import (
	"errors"
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// ErrValidation marks request payloads that failed validation.
var ErrValidation = errors.New("validation failed")

// RespondError maps domain errors to HTTP responses using RFC7807.
// Store failures fall through to a 500 with no detail so internal error
// text never reaches the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthenticated), errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrUnauthenticated.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", shared.ErrForbidden.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
