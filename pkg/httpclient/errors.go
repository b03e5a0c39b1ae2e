package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/StorefrontGo/pkg/errors"
)

// BackendErrorBody mirrors the failure envelope the storefront backend
// returns for 4xx/5xx responses: {"success": false, "message": "..."}.
type BackendErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an AppError. If the body matches the backend failure envelope, the
// server message is preserved verbatim for presentation. Otherwise a generic
// error with the status code and raw body is returned.
//
// The caller should only invoke this when resp.StatusCode indicates an error.
// The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("backend returned status %d (failed to read body: %w)", resp.StatusCode, err)
	}

	var body BackendErrorBody
	if json.Unmarshal(bodyBytes, &body) == nil && body.Message != "" {
		return mapBackendError(resp.StatusCode, body.Message)
	}

	// Unstructured error body; malformed responses propagate as-is.
	return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(bodyBytes))
}

// mapBackendError translates a backend HTTP status and message into an
// AppError preserving the failure kind.
func mapBackendError(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(message)
	case status == http.StatusNotFound:
		return &apperrors.AppError{
			Code:    "NOT_FOUND",
			Message: message,
			Status:  http.StatusNotFound,
			Err:     apperrors.ErrNotFound,
		}
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(message)
	default:
		return apperrors.Server(status, message)
	}
}
