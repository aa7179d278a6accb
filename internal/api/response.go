// Package api contains the HTTP layer: routing, request binding, and response formatting.
package api

import (
	"encoding/json"
	"net/http"
)

// Every endpoint answers with the same JSON shape: a data payload on
// success, or an error object with a machine-readable code and a
// human-readable message. Exactly one of the two fields is set.
type body struct {
	Data  any      `json:"data,omitempty"`
	Error *errInfo `json:"error,omitempty"`
}

type errInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respond writes a success payload under the given status.
func respond(w http.ResponseWriter, status int, data any) {
	writeBody(w, status, body{Data: data})
}

// fail writes an error payload. Codes are the stable identifiers clients
// branch on (VALIDATION_ERROR, INVALID_WINDOW, ...); messages are for
// humans and may change between releases.
func fail(w http.ResponseWriter, status int, code, message string) {
	writeBody(w, status, body{Error: &errInfo{Code: code, Message: message}})
}

func writeBody(w http.ResponseWriter, status int, b body) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status line is already flushed; an encode failure here is
	// unrecoverable for this request.
	_ = json.NewEncoder(w).Encode(b)
}
