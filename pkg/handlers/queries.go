package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/models"
	"github.com/ekaya-inc/fraudwatch/pkg/services"
)

// QueriesHandler runs ad-hoc SELECT statements for the SQL console.
type QueriesHandler struct {
	queryService services.QueryService
	logger       *zap.Logger
}

// NewQueriesHandler creates a new queries handler.
func NewQueriesHandler(queryService services.QueryService, logger *zap.Logger) *QueriesHandler {
	return &QueriesHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// RegisterRoutes registers the queries handler's routes on the given mux.
func (h *QueriesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /execute-sql", h.ExecuteSQL)
}

// ExecuteSQL handles POST /execute-sql
// Anything that is not a single SELECT is refused with 400 before reaching the warehouse.
func (h *QueriesHandler) ExecuteSQL(w http.ResponseWriter, r *http.Request) {
	var req models.ExecuteSQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.queryService.ExecuteSelect(r.Context(), req.SQL)
	if err != nil {
		writeError(w, h.logger, "execute query", err)
		return
	}

	respond(w, h.logger, models.ExecuteSQLResponse{Results: result.Rows})
}
