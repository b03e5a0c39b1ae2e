package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
	"github.com/utafrali/StorefrontGo/pkg/logger"
)

// StatusBody is the backend's envelope for non-payload responses:
// {"success": true} on success, {"success": false, "message": "..."} on failure.
// List endpoints return bare JSON arrays instead.
type StatusBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a {"success": true} envelope.
func WriteSuccess(w http.ResponseWriter, status int) {
	WriteJSON(w, status, StatusBody{Success: true})
}

// WriteFailure writes a {"success": false, "message": ...} envelope.
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, StatusBody{Success: false, Message: message})
}

// WriteError writes a failure envelope derived from the error type. AppError
// messages pass through verbatim; everything else is logged and reported as a
// generic 500. It prefers the request-scoped logger from context over the
// fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		WriteFailure(w, appErr.Status, appErr.Message)
		return
	}

	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)
	WriteFailure(w, http.StatusInternalServerError, "Something went wrong. Check the backend console for more details")
}
