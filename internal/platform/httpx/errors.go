package httpx

import (
	"errors"
	"net/http"

	"github.com/atlas-ledger/atlas-ledger/internal/ledger"
)

// RespondError maps engine errors to RFC7807 responses. A failed computation
// is always surfaced as an error, never as an empty report.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		Problem(w, http.StatusNotFound, "Account Not Found", err.Error())
	case errors.Is(err, ledger.ErrInvalidArgument):
		Problem(w, http.StatusBadRequest, "Invalid Argument", err.Error())
	case errors.Is(err, ledger.ErrCorruptHierarchy):
		Problem(w, http.StatusInternalServerError, "Corrupt Account Hierarchy", err.Error())
	case errors.Is(err, ledger.ErrStoreUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Journal Store Unavailable", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
