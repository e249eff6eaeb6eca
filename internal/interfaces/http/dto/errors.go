// Package dto holds the wire shapes shared by handlers and middleware.
package dto

import (
	"errors"
	"net/http"

	"github.com/storefront/backend/internal/domain/shared"
)

// Error names rendered in the "error" field.
const (
	ErrNameValidation = "Validation Error"
	ErrNameNotFound   = "Not Found"
	ErrNameConflict   = "Conflict"
	ErrNameInternal   = "Internal Server Error"
)

// GenericInternalDescription replaces the detail of unexpected failures.
const GenericInternalDescription = "An unexpected error occurred."

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Description string            `json:"description"`
	StatusCode  int               `json:"status_code"`
	Messages    map[string]string `json:"messages,omitempty"`
}

// NewErrorResponse builds an error body named after the HTTP status text.
func NewErrorResponse(status int, description string) ErrorResponse {
	return ErrorResponse{
		Error:       http.StatusText(status),
		Description: description,
		StatusCode:  status,
	}
}

// kindStatus maps each error kind to its status code and error name.
var kindStatus = map[shared.ErrorKind]struct {
	status int
	name   string
}{
	shared.KindValidation: {http.StatusBadRequest, ErrNameValidation},
	shared.KindNotFound:   {http.StatusNotFound, ErrNameNotFound},
	shared.KindConflict:   {http.StatusBadRequest, ErrNameConflict},
	shared.KindInternal:   {http.StatusInternalServerError, ErrNameInternal},
}

// HTTPStatus returns the status code for kind. Unknown kinds are 500.
func HTTPStatus(kind shared.ErrorKind) int {
	if m, ok := kindStatus[kind]; ok {
		return m.status
	}
	return http.StatusInternalServerError
}

// FromError renders err. Anything that is not a DomainError, or is one of
// kind Internal, gets the generic description so storage details never
// reach the client.
func FromError(err error) ErrorResponse {
	var de *shared.DomainError
	if !errors.As(err, &de) || de.Kind == shared.KindInternal {
		return ErrorResponse{
			Error:       ErrNameInternal,
			Description: GenericInternalDescription,
			StatusCode:  http.StatusInternalServerError,
		}
	}
	m, ok := kindStatus[de.Kind]
	if !ok {
		m = kindStatus[shared.KindInternal]
	}
	return ErrorResponse{
		Error:       m.name,
		Description: de.Message,
		StatusCode:  m.status,
		Messages:    de.Fields,
	}
}
