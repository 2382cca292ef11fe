package api

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
	"github.com/garagehubapp/garagehub-server/internal/store"
)

// APIError is the error shape produced by the error handler and consumed
// by the envelope transformer. It satisfies huma.StatusError.
type APIError struct {
	status  int
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// GetStatus returns the HTTP status code.
func (e *APIError) GetStatus() int {
	return e.status
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// ContentType keeps the envelope transformer's JSON content type.
func (e *APIError) ContentType(ct string) string {
	return "application/json"
}

// RegisterErrorHandler installs the domain-aware error translation.
// Call once before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		// A wrapped domain error wins over the status huma guessed.
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}
			if isNotFoundError(err) {
				return &APIError{
					status:  http.StatusNotFound,
					Code:    string(domainerrors.CodeNotFound),
					Message: err.Error(),
				}
			}
		}

		if message == "" {
			message = http.StatusText(status)
		}

		return &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
	}
}

// isNotFoundError reports whether err is one of the store's not-found sentinels.
func isNotFoundError(err error) bool {
	return errors.Is(err, store.ErrUserNotFound) ||
		errors.Is(err, store.ErrVehicleNotFound) ||
		errors.Is(err, store.ErrSessionNotFound)
}

// statusToCode maps plain HTTP statuses onto domain error codes.
func statusToCode(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return string(domainerrors.CodeValidation)
	case http.StatusUnauthorized:
		return string(domainerrors.CodeUnauthorized)
	case http.StatusForbidden:
		return string(domainerrors.CodeForbidden)
	case http.StatusNotFound:
		return string(domainerrors.CodeNotFound)
	case http.StatusConflict:
		return string(domainerrors.CodeConflict)
	case http.StatusTooManyRequests:
		return string(domainerrors.CodeRateLimited)
	default:
		return string(domainerrors.CodeInternal)
	}
}
