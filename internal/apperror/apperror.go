// Package apperror defines the error taxonomy shared by every layer.
//
// Repositories and services return *AppError values wrapping one of the
// sentinels below. Handlers never inspect messages; they match the sentinel
// with errors.Is and pick the HTTP status from it. This keeps the mapping from
// domain failure to transport status in exactly one place (handler.writeError).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrDuplicate          = errors.New("duplicate identity")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
	ErrUnsupported        = errors.New("unsupported media type")
	ErrNotImplemented     = errors.New("not implemented")
	ErrRateLimited        = errors.New("rate limited")
)

type AppError struct {
	Err     error  // sentinel, used by errors.Is
	Message string // human-readable message sent to the client
	Field   string // optional: request field that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports a uniqueness violation on an identity field
// (username or email). The field name is echoed back to the client.
func Duplicate(field string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: fmt.Sprintf("%s is already registered", field),
		Field:   field,
	}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Err: ErrUnauthenticated, Message: message}
}

// InvalidCredentials is returned for both an unknown email and a wrong
// password. The message must not reveal which one happened.
func InvalidCredentials() *AppError {
	return &AppError{Err: ErrInvalidCredentials, Message: "invalid email or password"}
}

func InvalidToken(message string) *AppError {
	return &AppError{Err: ErrInvalidToken, Message: message}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func Unsupported(field, message string) *AppError {
	return &AppError{Err: ErrUnsupported, Message: message, Field: field}
}

func NotImplemented(message string) *AppError {
	return &AppError{Err: ErrNotImplemented, Message: message}
}

func RateLimited() *AppError {
	return &AppError{Err: ErrRateLimited, Message: "too many requests, slow down"}
}
