package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/notes-api/internal/api/shared"
	"github.com/phrazzld/notes-api/internal/domain"
	"github.com/phrazzld/notes-api/internal/service"
	"github.com/phrazzld/notes-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var (
		typeErr  *shared.FieldTypeError
		valErrs  validator.ValidationErrors
		tooLarge *http.MaxBytesError
	)

	switch {
	case err == nil:
		return http.StatusOK

	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge

	// Not found errors
	case errors.Is(err, service.ErrNoteNotFound),
		errors.Is(err, store.ErrNoteNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrNoteConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &typeErr),
		errors.As(err, &valErrs):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		typeErr  *shared.FieldTypeError
		valErr   *domain.ValidationError
		valErrs  validator.ValidationErrors
		tooLarge *http.MaxBytesError
	)

	switch {
	case errors.As(err, &tooLarge):
		return fmt.Sprintf("Request body too large: limit is %d bytes", tooLarge.Limit)

	case errors.Is(err, service.ErrNoteNotFound),
		errors.Is(err, store.ErrNoteNotFound):
		return "Note not found"

	case errors.Is(err, service.ErrNoteConflict),
		errors.Is(err, store.ErrDuplicate):
		return "Note already exists"

	case errors.As(err, &typeErr):
		return fmt.Sprintf("Invalid %s: must be a %s", typeErr.Field, typeErr.Want)

	case errors.As(err, &valErrs) && len(valErrs) > 0:
		return fmt.Sprintf("Invalid %s: %s", valErrs[0].Field(), validationTagMessage(valErrs[0].Tag()))

	case errors.As(err, &valErr):
		return fmt.Sprintf("Invalid %s: %s", valErr.Field, valErr.Message)

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid note data"

	default:
		return "An unexpected error occurred"
	}
}

// validationTagMessage maps validation tags to user-friendly error messages
func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. The status code and the
// client message are derived from err.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
