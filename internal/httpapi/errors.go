package httpapi

import (
	"encoding/json"
	"net/http"

	"buildhook/internal/script"
	"buildhook/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Debug().Err(err).Msg("encode response")
	}
}

// evalStatus maps expression errors to HTTP status codes.
func evalStatus(err error) int {
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	switch {
	case script.IsSyntax(err):
		return http.StatusBadRequest
	case script.IsSubtypeNotFound(err), script.IsOperandNotFound(err):
		return http.StatusUnprocessableEntity
	case script.IsNotFound(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
