package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/models"
	"github.com/ekaya-inc/fraudwatch/pkg/services"
)

// PredictionsHandler scores single transactions.
type PredictionsHandler struct {
	predictionService services.PredictionService
	logger            *zap.Logger
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(predictionService services.PredictionService, logger *zap.Logger) *PredictionsHandler {
	return &PredictionsHandler{
		predictionService: predictionService,
		logger:            logger,
	}
}

// RegisterRoutes registers the predictions handler's routes on the given mux.
func (h *PredictionsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /predictions", h.Predict)
}

// Predict handles POST /predictions
func (h *PredictionsHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req models.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, "score transaction", asValidation(err))
		return
	}

	prediction, err := h.predictionService.Predict(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, "score transaction", err)
		return
	}

	respond(w, h.logger, prediction)
}
