package api

import (
	"errors"
	"net/http"

	"shareit/internal/domain"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message, description string) {
	writeJSON(w, statusCode, errorResponse{Error: message, Description: description})
}

// statusFor classifies a service error into its HTTP status.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, domain.ErrNotAvailable):
		return http.StatusBadRequest, "not available"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeServiceError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	status, message := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
		writeError(w, status, message, "unexpected error")
		return
	}
	logger.Info().Err(err).Int("status", status).Msg("request rejected")
	writeError(w, status, message, err.Error())
}
