// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getmockd/hydra/pkg/hydra"
)

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, status int, message, hint string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Hint: hint})
}

// WriteErr writes err as a JSON error. The status and hint come from the
// error when it provides them (hydra.StatusCodeError, hydra.HintError);
// other errors are 500s.
func WriteErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var sc hydra.StatusCodeError
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	var hint string
	var he hydra.HintError
	if errors.As(err, &he) {
		hint = he.Hint()
	}
	WriteError(w, status, err.Error(), hint)
}

// WriteOK writes a 200 OK response with data.
func WriteOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

// WriteCreated writes a 201 Created response with the created resource.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, data)
}

// WriteBadRequest writes a 400 Bad Request error response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, "")
}

// WriteMethodNotAllowed writes a 405 response listing the allowed methods.
func WriteMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	WriteError(w, http.StatusMethodNotAllowed, "method not allowed", "")
}
