package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError so the API has one
// error shape:
//
//	{"error": "not_found", "message": "board not found with id 7"}
//
// Domain errors carry no status codes; writeError is the single place where
// the apperror taxonomy is translated to HTTP.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation       → 400 validation_error (with "field" when known)
//	apperror.ErrUnauthenticated  → 401 unauthorized
//	apperror.ErrForbidden        → 403 forbidden
//	apperror.ErrNotFound         → 404 not_found
//	apperror.ErrConflict         → 409 conflict
//	anything else                → 500 internal_error
//
// WHY HIDE INTERNAL ERRORS?
// A raw driver error can name tables, hosts or users ("pq: password
// authentication failed for user board"). Only *apperror.AppError messages
// are written for clients; everything else is logged server-side and the
// client sees a fixed message.
//
// WHY ENCODE FAILURES ONLY GET LOGGED:
// By the time Encode runs the status line has been sent, so a second
// WriteHeader would be ignored. Logging is the only useful thing left.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/college-board/internal/apperror"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeJSON sets headers and status before the body; once the body starts,
// header changes are ignored.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps err to a status code. Errors outside the apperror taxonomy
// become a generic 500 and are logged; their text never reaches the client.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, logger, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "an unexpected error occurred",
		})
		return
	}

	status, kind := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, kind = http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrUnauthenticated):
		status, kind = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		status, kind = http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status, kind = http.StatusConflict, "conflict"
	}

	writeJSON(w, logger, status, ErrorResponse{
		Error:   kind,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}
