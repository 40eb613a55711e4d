package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failure body is read.
const maxErrorBody = 64 << 10

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	// Fields holds per-field validation messages for 400 responses.
	Fields  map[string]string
	TraceID string
	// RetryAfter is set from the Retry-After header on 429 responses.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// decodeError builds an *APIError from a failure response. Bodies that are
// not the JSON failure envelope fall back to the status text.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body struct {
		Message string            `json:"message"`
		Errors  map[string]string `json:"errors"`
		TraceID string            `json:"traceId"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Message = body.Message
		apiErr.Fields = body.Errors
		apiErr.TraceID = body.TraceID
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(http.StatusText(resp.StatusCode))
	}

	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		apiErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return apiErr
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not an
// *APIError.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response or a missing token.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrNoToken) || StatusCode(err) == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsConflict reports whether err is a 409 response.
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

// IsValidation reports whether err is a 400 response.
func IsValidation(err error) bool {
	return StatusCode(err) == http.StatusBadRequest
}
