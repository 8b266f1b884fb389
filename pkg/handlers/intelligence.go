package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/models"
	"github.com/ekaya-inc/fraudwatch/pkg/services"
)

// ResetResponse acknowledges a conversation reset. The assistant keeps no
// per-conversation state, so there is nothing to clear.
type ResetResponse struct {
	Success bool `json:"success"`
}

// IntelligenceHandler serves the natural-language assistant.
type IntelligenceHandler struct {
	intelligenceService services.IntelligenceService
	logger              *zap.Logger
}

// NewIntelligenceHandler creates a new intelligence handler.
func NewIntelligenceHandler(intelligenceService services.IntelligenceService, logger *zap.Logger) *IntelligenceHandler {
	return &IntelligenceHandler{
		intelligenceService: intelligenceService,
		logger:              logger,
	}
}

// RegisterRoutes registers the intelligence handler's routes on the given mux.
func (h *IntelligenceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /intelligence", h.Ask)
}

// Ask handles POST /intelligence
// Only a missing question is answered with 400. An unreadable body and every
// failure inside the turn come back as a 200 carrying the apology message.
func (h *IntelligenceHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.IntelligenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Unreadable intelligence request", zap.Error(err))
		respond(w, h.logger, models.IntelligenceResponse{Message: models.AnalystMessage{
			Content: []models.ContentBlock{models.TextBlock(services.MessageApology)},
		}})
		return
	}

	if req.Reset {
		respond(w, h.logger, ResetResponse{Success: true})
		return
	}

	turn, err := h.intelligenceService.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, h.logger, "answer question", err)
		return
	}

	respond(w, h.logger, models.IntelligenceResponse{Message: turn.Message})
}
