package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
	"github.com/ekaya-inc/fraudwatch/pkg/logging"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeError answers with a 400 for refused or malformed requests and a
// generic 500 for everything else. The cause is logged, never returned.
func writeError(w http.ResponseWriter, logger *zap.Logger, action string, err error) {
	var policyErr *apperrors.PolicyError
	var validationErr *apperrors.ValidationError

	status := http.StatusInternalServerError
	code := "internal_error"
	message := "Failed to " + action

	switch {
	case errors.As(err, &policyErr):
		status, code, message = http.StatusBadRequest, "policy_violation", policyErr.Error()
		logger.Info("Request refused", zap.String("action", action), zap.String("reason", message))
	case errors.As(err, &validationErr):
		status, code, message = http.StatusBadRequest, "invalid_request", validationErr.Error()
		logger.Info("Invalid request", zap.String("action", action), zap.String("reason", message))
	default:
		logger.Error("Request failed",
			zap.String("action", action),
			zap.String("error", logging.SanitizeError(err)))
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// respond writes data as a 200 JSON body.
func respond(w http.ResponseWriter, logger *zap.Logger, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

// asValidation keeps a decoder's validation error and turns any other
// decoding failure into one.
func asValidation(err error) error {
	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		return err
	}
	return apperrors.NewValidationError("", "invalid request body")
}
