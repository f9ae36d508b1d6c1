package handler

// RESPONSE HELPERS:
// Every handler sends JSON through writeJSON and errors through writeError,
// so the whole API has one response shape. Errors are always
//
//	{"error": "<human-readable message>"}
//
// which is what the frontend's inline error banner renders directly.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/socialhub/internal/apperror"
)

// ErrorResponse is the standard error format returned by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must go out before the body — once Encode writes, the headers are
// already on the wire.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP status code and sends it.
//
// The service layer returns apperror sentinels; this is the single place
// they become status codes:
//
//	validation, duplicate → 400   (duplicates render as form errors)
//	unauthorized          → 401
//	forbidden             → 403   (resource exists, caller doesn't own it)
//	not found             → 404
//	anything else         → 500, raw message in the body
//
// errors.Is walks the wrap chain, so services are free to annotate with
// fmt.Errorf("...: %w", err) without breaking the mapping.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrDuplicate):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	}

	message := err.Error()
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		// Strip any wrapping context; the client gets the clean message.
		message = appErr.Message
	}

	writeJSON(w, status, ErrorResponse{Error: message})
}
