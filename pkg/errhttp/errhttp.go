// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to WriteError for each new domain sentinel error.
//
// The checks run in a fixed order: store failures first, then validation
// failures, then errors that carry their own status, then everything else.
package errhttp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ghuser/appdirectory/pkg/httpx"
	appdomain "github.com/ghuser/appdirectory/services/application/domain"
)

// Error messages written in the "error" field.
const (
	MsgDatabaseError = "database error"
	MsgInvalidData   = "invalid data"
	MsgInternalError = "internal server error"
)

// StatusError is an error that carries the HTTP status it should be reported with.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// NewStatusError returns a *StatusError for status with a formatted message.
func NewStatusError(status int, format string, args ...any) *StatusError {
	return &StatusError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is()/errors.As() so wrapped errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	var se *StatusError
	switch {
	case errors.Is(err, appdomain.ErrStoreOperation):
		httpx.JSONErrorDetails(w, http.StatusBadRequest, MsgDatabaseError, err.Error()) // 400
	case errors.Is(err, appdomain.ErrInvalidApplication):
		httpx.JSONErrorDetails(w, http.StatusUnprocessableEntity, MsgInvalidData, err.Error()) // 422
	case errors.As(err, &se):
		httpx.JSONError(w, se.Status, se.Message)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, MsgInternalError) // 500
	}
}
