// Package httpx holds the JSON envelope and request helpers shared by FAKIE's HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// Stable error codes carried in the error envelope.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeInvalidRequest   = "invalid_request"
	CodeValidationFailed = "validation_failed"
	CodeUnauthorized     = "unauthorized"
	CodeInvalidCreds     = "invalid_credentials"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodeRateLimited      = "rate_limited"
	CodeServerError      = "server_error"
)

// DefaultMaxBodyBytes caps request bodies when a handler has no explicit limit.
const DefaultMaxBodyBytes int64 = 1 << 20

// APIError is the body of every failure response.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse is the failure envelope: {"error":{...}}.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WriteJSON writes v with status. Responses are never cached.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the failure envelope.
func WriteError(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: APIError{Code: code, Message: msg}})
}

// WriteValidation writes a 400 listing the offending fields.
func WriteValidation(w http.ResponseWriter, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: APIError{
		Code:    CodeValidationFailed,
		Message: "Validation failed",
		Fields:  fields,
	}})
}

// WriteInternal writes the opaque 500 used for store and other unexpected failures.
func WriteInternal(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, CodeServerError, "Internal server error")
}

// DecodeJSON decodes exactly one JSON object of at most maxBytes into dst.
// Keys dst does not declare are ignored; trailing data is an error.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errors.New("empty body")
	}
	defer func() { _ = r.Body.Close() }()

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body := http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Ensure there is no extra data after the first JSON value.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after JSON object")
	}
	return nil
}
