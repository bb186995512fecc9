// Package api implements the HTTP surface: handlers, request models,
// and the mapping from internal errors to status codes.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mlowery/tasktrack-api/internal/domain"
	"github.com/mlowery/tasktrack-api/internal/service"
	"github.com/mlowery/tasktrack-api/internal/service/auth"
	"github.com/mlowery/tasktrack-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes based
// on the error kind, never on its message. Unknown errors default to
// 500 so nothing internal is ever misclassified as a client fault.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Lifecycle conflicts and duplicates
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		isDomainValidationError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// error. Internal details never leak through this path.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, store.ErrTagNotFound):
		return "Tag not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	// Duplicates
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	// Lifecycle conflicts and argument errors carry messages that are
	// part of the API contract, minus the kind prefix.
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInvalidArgument):
		return stripKindPrefix(err)

	// Domain validation sentinels are written for end users.
	case isDomainValidationError(err):
		return err.Error()
	case errors.Is(err, domain.ErrValidation):
		return "Validation error"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// isDomainValidationError reports whether err is one of the entity
// validation sentinels, whose messages are safe to return verbatim.
func isDomainValidationError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrTaskTitleEmpty,
		domain.ErrTaskTitleTooLong,
		domain.ErrTaskUserIDEmpty,
		domain.ErrTaskStatusInvalid,
		domain.ErrTagNameEmpty,
		domain.ErrTagNameTooLong,
		domain.ErrTagUserIDEmpty,
		domain.ErrUserNameEmpty,
		domain.ErrEmptyEmail,
		domain.ErrInvalidEmail,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
		domain.ErrEmptyPassword,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// stripKindPrefix drops the "conflict: " / "invalid argument: " prefix
// from a kind-wrapped error, leaving the contract message.
func stripKindPrefix(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

// SanitizeValidationError converts a validator.Struct failure into a
// short, field-oriented message without the library's internal framing.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return "Invalid " + field + ": " + validationTagMessage(tag)
				}
				return "Invalid " + field
			}
		}
	}
	return "Validation error"
}

// validationTagMessage maps validator tags to user-friendly phrases.
func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
