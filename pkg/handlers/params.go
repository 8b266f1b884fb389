package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ParseIntQuery extracts an optional integer query parameter.
// Returns fallback and true when the parameter is absent, the parsed value and
// true on success, or 0 and false on error (after writing an error response).
func ParseIntQuery(w http.ResponseWriter, r *http.Request, name string, fallback int, logger *zap.Logger) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", name+": must be an integer"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return value, true
}

// ParseBoolQuery reports whether the query parameter is exactly "true".
// Any other value, including absence, is false.
func ParseBoolQuery(r *http.Request, name string) bool {
	return r.URL.Query().Get(name) == "true"
}

// queryOr returns the trimmed value, or fallback when it is blank.
func queryOr(value, fallback string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return fallback
}
