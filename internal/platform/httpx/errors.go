package httpx

import (
	"errors"
	"net/http"

	"github.com/primanota-erp/primanota/internal/accounting/shared"
)

// Sentinel errors for non-accounting resources.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, shared.ErrAccountNotFound),
		errors.Is(err, shared.ErrEntryNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, shared.ErrSourceConflict),
		errors.Is(err, shared.ErrItemAlreadyClosed):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrTemplateMisconfigured),
		errors.Is(err, shared.ErrOrphanedNature):
		Problem(w, http.StatusUnprocessableEntity, "Configuration Error", err.Error())
	case errors.Is(err, ErrValidation),
		errors.Is(err, shared.ErrUnbalanced),
		errors.Is(err, shared.ErrTooFewLines),
		errors.Is(err, shared.ErrEmptyEntry),
		errors.Is(err, shared.ErrCannotGenerate),
		errors.Is(err, shared.ErrMissingCounterparty),
		errors.Is(err, shared.ErrUnsupportedRole),
		errors.Is(err, shared.ErrNoItemsSelected),
		errors.Is(err, shared.ErrMissingSubAccount),
		errors.Is(err, shared.ErrNotLeafAccount):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
