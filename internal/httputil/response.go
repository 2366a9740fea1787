package httputil

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error kinds carried in the response envelope. They give callers enough
// structure to tell "fix your input" from "try again later" without parsing
// the message text.
const (
	KindInvalidInput  = "invalid_input"
	KindEngineFailure = "engine_failure"
	KindTimeout       = "timeout"
	KindInternal      = "internal"
)

// ErrorEnvelope is the JSON body of every non-2xx response.
type ErrorEnvelope struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// WriteJSONError writes the error envelope with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorEnvelope{Error: msg, Kind: kind}); err != nil {
		log.Printf("failed to encode json error response: %v", err)
	}
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode json response: %v", err)
	}
}

// WriteJSONOK writes a successful JSON response (200 OK).
func WriteJSONOK(w http.ResponseWriter, data interface{}) {
	WriteJSON(w, http.StatusOK, data)
}

// MethodNotAllowed writes a 405 Method Not Allowed response.
func MethodNotAllowed(w http.ResponseWriter) {
	WriteJSONError(w, http.StatusMethodNotAllowed, KindInvalidInput, "method not allowed")
}

// BadRequest writes a 400 Bad Request response with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	WriteJSONError(w, http.StatusBadRequest, KindInvalidInput, msg)
}

// InternalServerError writes a 500 Internal Server Error response.
func InternalServerError(w http.ResponseWriter, msg string) {
	WriteJSONError(w, http.StatusInternalServerError, KindInternal, msg)
}

// NotFound writes a 404 Not Found response.
func NotFound(w http.ResponseWriter, msg string) {
	WriteJSONError(w, http.StatusNotFound, KindInvalidInput, msg)
}
