// Package api provides HTTP handlers for the interview API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/containerd/errdefs"

	"github.com/ashureev/interview-coach/internal/domain"
)

const defaultMaxBodyBytes = 1 << 20

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// ServiceError maps a service error to its HTTP status and writes it.
func ServiceError(w http.ResponseWriter, err error, attrs ...any) {
	status, message := Classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", append([]any{"error", err}, attrs...)...)
	} else {
		slog.Debug("Request rejected", append([]any{"error", err, "status", status}, attrs...)...)
	}
	Error(w, status, message)
}

// Classify returns the HTTP status and client-facing message for err.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, domain.ErrRoleNotFound):
		return http.StatusNotFound, "role not found"
	case errdefs.IsNotFound(err):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrPoolEmpty):
		return http.StatusInternalServerError, "No questions found for this role/level"
	case errdefs.IsDataLoss(err):
		return http.StatusInternalServerError, "session record is invalid"
	case errdefs.IsInvalidArgument(err):
		return http.StatusBadRequest, "invalid request"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// decodeJSON reads a size-capped JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) bool {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
