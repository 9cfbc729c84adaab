package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	filecrud "github.com/Yashchauhan008/file-crud"
)

// Error codes returned in ErrorResponse.Error.
const (
	CodeValidation       = "validation_error"
	CodeNotFound         = "not_found"
	CodeUpstream         = "upstream_error"
	CodeInternal         = "internal_error"
	CodeMethodNotAllowed = "method_not_allowed"
)

// Response is the envelope for successful responses.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message, stack string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error:   errCode,
		Message: message,
		Stack:   stack,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type. With
// withStack the response carries the wrapped error chain.
func HandleError(w http.ResponseWriter, err error, withStack bool) {
	code, errCode, message := classify(err)

	if code >= http.StatusInternalServerError {
		slog.Error("request error", "error", err)
	} else {
		slog.Warn("request rejected", "status", code, "error", err)
	}

	var stack string
	if withStack {
		stack = errorChain(err)
	}

	WriteError(w, code, errCode, message, stack)
}

func classify(err error) (int, string, string) {
	var opErr *filecrud.OperationalError
	operational := errors.As(err, &opErr)

	switch {
	case errors.Is(err, filecrud.ErrValidation):
		if operational {
			return http.StatusBadRequest, CodeValidation, opErr.Message
		}
		return http.StatusBadRequest, CodeValidation, "Invalid request"
	case errors.Is(err, filecrud.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, "Resource not found"
	case errors.Is(err, filecrud.ErrUpstream):
		if operational {
			return http.StatusInternalServerError, CodeUpstream, opErr.Message
		}
		return http.StatusInternalServerError, CodeUpstream, "Storage service error"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, CodeInternal, "Request canceled"
	}

	// Default internal error
	return http.StatusInternalServerError, CodeInternal, "Internal server error"
}

// errorChain renders err and every error it wraps, one per line. Branches
// of joined errors are indented under their parent.
func errorChain(err error) string {
	var lines []string

	var walk func(e error, indent string)
	walk = func(e error, indent string) {
		lines = append(lines, indent+e.Error())
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, child := range u.Unwrap() {
				if child != nil {
					walk(child, indent+"  ")
				}
			}
		case interface{ Unwrap() error }:
			if child := u.Unwrap(); child != nil {
				walk(child, indent)
			}
		}
	}
	walk(err, "")

	return strings.Join(lines, "\n")
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
