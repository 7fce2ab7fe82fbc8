package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tasktrack/internal/api/shared"
	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/service"
	"github.com/phrazzld/tasktrack/internal/service/auth"
	"github.com/phrazzld/tasktrack/internal/store"
)

// User-facing messages of non-validation failures.
const (
	MsgUnauthenticated   = "Unauthenticated"
	MsgUnauthorised      = "Unauthorised"
	MsgTaskNotFound      = "Task not found"
	MsgInvalidRequest    = "Invalid request format"
	MsgUnexpectedFailure = "An unexpected error occurred"
)

// errMalformedRequest marks a request body that could not be decoded.
var errMalformedRequest = errors.New("malformed request body")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, errMalformedRequest):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgUnexpectedFailure
	}

	var validationErr *domain.ValidationError
	switch {
	case MapErrorToStatusCode(err) == http.StatusUnauthorized:
		return MsgUnauthenticated
	case errors.Is(err, service.ErrNotOwned):
		return MsgUnauthorised
	case errors.Is(err, store.ErrNotFound):
		return MsgTaskNotFound
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid task data"
	case errors.Is(err, errMalformedRequest):
		return MsgInvalidRequest
	default:
		return MsgUnexpectedFailure
	}
}

// HandleAPIError writes the response for err. Validation errors become a
// 422 with per-field messages; everything else goes through the safe
// message mapping. fallback replaces the generic message of a 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)

	var validationErr *domain.ValidationError
	if status == http.StatusUnprocessableEntity && errors.As(err, &validationErr) {
		shared.RespondWithValidationErrors(w, r, validationErr.Message, map[string][]string{
			validationErr.Field: {validationErr.Message},
		})
		return
	}

	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
