package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// MaxRequestBodyBytes caps the size of a JSON request body.
const MaxRequestBodyBytes = 1 << 20

// ErrInvalidRequestFormat is returned by DecodeJSON for a body that is not a
// single well-formed JSON value.
var ErrInvalidRequestFormat = errors.New("invalid request format")

// DecodeJSON decodes the request body into v. Every decoding failure wraps
// ErrInvalidRequestFormat.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequestFormat, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON value", ErrInvalidRequestFormat)
	}
	return nil
}
