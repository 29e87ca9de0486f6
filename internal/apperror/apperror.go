// Package apperror defines the domain error taxonomy shared by the service,
// repository and HTTP layers.
//
// Every domain failure is an *AppError wrapping one of the sentinel errors
// below. Callers classify with errors.Is against the sentinel and read the
// human-readable text from Message. The HTTP layer maps sentinels to status
// codes; nothing below the handler package knows about HTTP.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("Validation Error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing board, comment, like, scrap, listing or user.
func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %v", resource, id),
	}
}

// DuplicateRelation is returned when a user already likes or scraps a board.
// It is a Conflict, so HTTP handlers map it to 409.
func DuplicateRelation(relation string, boardID int64) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists for board %d", relation, boardID),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthenticated reports a request whose identity could not be established.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// UnknownUser is returned when a verified token names an email with no user
// record behind it. It is an authentication failure, not a NotFound.
func UnknownUser(email string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: fmt.Sprintf("acting identity not found: %s", email),
	}
}
