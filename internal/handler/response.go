// Package handler contains the HTTP handlers of the JSON API.
//
// Handlers parse the request, call one service method and write the result.
// They hold no business rules. Every failure goes through writeError, which
// is the only place a domain error becomes an HTTP status.
package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
	"github.com/Ly-yang/wechat-editor/internal/auth"
)

// ErrorResponse is the body of every error reply.
//
//	{"error": "article not found with id 7", "code": "not_found"}
type ErrorResponse struct {
	Error string `json:"error"`           // human-readable message
	Code  string `json:"code"`            // machine-readable error kind
	Field string `json:"field,omitempty"` // request field that caused the error
}

// MessageResponse acknowledges a write that has nothing else to return.
type MessageResponse struct {
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message"`
}

// writeJSON sends data with the given status. render picks the encoder and
// sets Content-Type.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

// statusFor maps an error to its HTTP status and machine code. Errors with
// no sentinel in their chain are internal.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrDuplicate):
		return http.StatusBadRequest, "duplicate_identity"
	case errors.Is(err, apperror.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, apperror.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, apperror.ErrInvalidToken):
		return http.StatusForbidden, "invalid_token"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrUnsupported):
		return http.StatusBadRequest, "unsupported_media_type"
	case errors.Is(err, apperror.ErrNotImplemented):
		return http.StatusNotImplemented, "not_implemented"
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	}
	return http.StatusInternalServerError, "internal_error"
}

// writeError sends the JSON error body for err.
//
// Internal errors are logged in full and answered with a generic message:
// their text may contain SQL or file paths.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := statusFor(err)

	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, r, status, ErrorResponse{Error: "internal server error", Code: code})
		return
	}

	resp := ErrorResponse{Error: err.Error(), Code: code}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp.Error = appErr.Message
		resp.Field = appErr.Field
	}
	writeJSON(w, r, status, resp)
}

// WriteError is writeError for callers outside the package, such as the
// router's NotFound handler and the rate limiter.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	writeError(w, r, logger, err)
}

// decode binds the JSON body into v. A malformed body is a validation error.
func decode(r *http.Request, v render.Binder) error {
	if err := render.Bind(r, v); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperror.ValidationFailed("body", "request body is not valid JSON")
	}
	return nil
}

// idParam reads a positive integer path parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// queryInt reads an integer query parameter. Missing or malformed values
// yield 0 and are coerced by the service.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

// callerID returns the authenticated user's id. Routes using it sit behind
// auth.RequireAuth, so a missing identity means a wiring bug.
func callerID(r *http.Request) (int64, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return 0, apperror.Unauthenticated("authentication required")
	}
	return id.UserID, nil
}
