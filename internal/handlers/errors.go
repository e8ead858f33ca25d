package handlers

import (
	"errors"
	"net/http"

	"function-gateway/internal/apierror"
)

// bodyError maps a failure to read the request body to its HTTP error. A
// body cut off by the size limit is a 413; anything else is a bad request.
func bodyError(err error) *apierror.HTTPError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apierror.FromStatus(http.StatusRequestEntityTooLarge)
	}

	httpErr := apierror.FromStatus(http.StatusBadRequest)
	httpErr.Err = err
	return httpErr
}

// methodAllowed reports whether the function accepts method. HEAD is served
// like GET; net/http drops the body.
func methodAllowed(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
