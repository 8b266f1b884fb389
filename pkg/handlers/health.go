package handlers

import (
	"net/http"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/config"
)

// PingResponse contains service status and version information.
type PingResponse struct {
	Status      string                     `json:"status"`
	Version     string                     `json:"version"`
	Service     string                     `json:"service"`
	GoVersion   string                     `json:"go_version"`
	Hostname    string                     `json:"hostname"`
	Environment string                     `json:"environment"`
	Warehouse   *warehouse.ConnectionStats `json:"warehouse,omitempty"`
}

// ConnectionStatser reports warehouse session counters.
type ConnectionStatser interface {
	Stats() warehouse.ConnectionStats
}

// HealthHandler handles health check and ping endpoints.
type HealthHandler struct {
	cfg    *config.Config
	conns  ConnectionStatser
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. conns may be nil.
func NewHealthHandler(cfg *config.Config, conns ConnectionStatser, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, conns: conns, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /ping", h.Ping)
}

// Health handles GET /health requests.
// Liveness only: it never touches the warehouse.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ping handles GET /ping requests.
// Returns detailed service information including version, environment and
// warehouse session counters.
func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	hostname, err := os.Hostname()
	if err != nil {
		http.Error(w, "failed to get hostname", http.StatusInternalServerError)
		return
	}

	response := PingResponse{
		Status:      "ok",
		Version:     h.cfg.Version,
		Service:     "fraudwatch",
		GoVersion:   runtime.Version(),
		Hostname:    hostname,
		Environment: h.cfg.Env,
	}
	if h.conns != nil {
		stats := h.conns.Stats()
		response.Warehouse = &stats
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode ping response", zap.Error(err))
	}
}
