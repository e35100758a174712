package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"sociogram/internal/apperrors"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

func WriteJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteServiceError maps the error taxonomy to HTTP statuses: validation 400,
// not found 404, auth 401, forbidden 403, everything else 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsValidation(err):
		WriteError(w, err.Error(), http.StatusBadRequest)
	case apperrors.IsNotFound(err):
		WriteError(w, err.Error(), http.StatusNotFound)
	case apperrors.IsAuth(err):
		WriteError(w, err.Error(), http.StatusUnauthorized)
	case apperrors.IsForbidden(err):
		WriteError(w, err.Error(), http.StatusForbidden)
	default:
		log.Error().Err(err).Msg("request failed")
		WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
