package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/askpeer/askpeer-be/internal/models"
)

// writeJSON writes a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps a sentinel domain error to its HTTP status. Anything
// unmapped is logged with full detail and returned as an opaque 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication invalid")
	case errors.Is(err, models.ErrForbidden):
		writeError(w, http.StatusForbidden, "you do not own this resource")
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid request")
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, models.ErrUpstream):
		log.Error().Err(err).Msg("Language model gateway failure")
		writeError(w, http.StatusInternalServerError, "assistant is temporarily unavailable")
	default:
		log.Error().Err(err).Msg("Unhandled internal error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
