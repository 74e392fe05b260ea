// internal/app/system/httpjson/httpjson.go

// Package httpjson holds the JSON request/response helpers shared by all
// feature handlers.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies; none of our payloads come close.
const maxBodyBytes = 1 << 20

// ErrorResponse is the wire shape for every error the API returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Write encodes value as JSON with the given status.
func Write(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// Error writes a structured error response.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, ErrorResponse{Error: message})
}

// Decode reads a JSON request body into dst. Unknown fields are rejected
// so typos in field names surface as 400s instead of silently-ignored
// input.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// A second document in the body is malformed input, not extra data to ignore.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}
