package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/trademax/academy-enrollment/internal/pkg/logger"
)

// ErrorResponse is the failure envelope every endpoint returns.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("json encode failed", "error", err)
	}
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes the failure envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// ErrorWithDetails writes the failure envelope with a details string.
func ErrorWithDetails(w http.ResponseWriter, status int, message, details string) {
	JSON(w, status, ErrorResponse{Error: message, Details: details})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Unauthorized writes a 401 error.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// ServiceUnavailable writes a 503 error for features whose backing service
// is not configured.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	Error(w, http.StatusServiceUnavailable, message)
}

// InternalError logs err and writes a 500 with message. The raw error is
// never sent to the client.
func InternalError(w http.ResponseWriter, message string, err error) {
	logger.Error(message, "error", err)
	Error(w, http.StatusInternalServerError, message)
}

// Decode reads a JSON body into dst. It writes a 400 and returns false when
// the body is missing or malformed.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			BadRequest(w, "Request body is required")
		} else {
			BadRequest(w, "Invalid JSON body")
		}
		return false
	}
	return true
}
