package errx

import (
	"errors"
	"net/http"
)

// ErrUnknownProvider indicates the lookup service does not recognise the
// requested insurance provider name.
var ErrUnknownProvider = errors.New("unknown insurance provider")

// WrapLookup maps insurance lookup failures to the unified AppError type.
func WrapLookup(err error) *AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrUnknownProvider) {
		return New(err, http.StatusNotFound, LookupNotFoundMessage)
	}

	return New(err, http.StatusBadGateway, LookupErrorMessage)
}
