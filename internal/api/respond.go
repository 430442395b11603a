package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyperengineering/regimen/internal/store"
)

// errorResponse is the JSON error envelope for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// mapStoreError converts storage errors to API responses. Validation
// errors surface as 400; everything else collapses to a generic 500 with
// no internal detail leaked to the client.
func mapStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("storage error", "error", err, "path", r.URL.Path, "method", r.Method)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, store.ErrMissingUser) || errors.Is(err, store.ErrInvalidDay)
}
