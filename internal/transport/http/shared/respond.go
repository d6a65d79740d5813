// Package shared centralizes the JSON wire envelope so every handler speaks
// the same {success, data, error} shape.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "greensquirrel/pkg/domain-errors"
)

// Envelope is the standard response wrapper. Error is a user-safe message;
// internals never leak through it.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteData writes a success envelope with the given payload.
func WriteData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// WriteJSON writes a bare (non-enveloped) JSON body. The auth flow responses
// use this shape.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into a failure envelope. Non-domain
// errors map to 500 with a generic message so internals stay scrubbed.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	message := "An error occurred."
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(Envelope{Success: false, Error: message})
}
