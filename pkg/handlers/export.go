package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
	"github.com/ekaya-inc/fraudwatch/pkg/services"
)

// ExportHandler serves the downloadable fraud report.
type ExportHandler struct {
	reportService services.ReportService
	logger        *zap.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(reportService services.ReportService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// RegisterRoutes registers the export handler's routes on the given mux.
func (h *ExportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /export", h.Export)
}

// Export handles GET /export?format=json|csv
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(queryOr(r.URL.Query().Get("format"), "json"))
	if format != "json" && format != "csv" {
		writeError(w, h.logger, "export report", apperrors.NewValidationError("format", "must be json or csv"))
		return
	}

	report, err := h.reportService.Generate(r.Context())
	if err != nil {
		writeError(w, h.logger, "export report", err)
		return
	}

	if format == "json" {
		respond(w, h.logger, report)
		return
	}

	// Rendered up front so a write failure can still become a 500.
	var buf bytes.Buffer
	if err := services.WriteReportCSV(&buf, report); err != nil {
		writeError(w, h.logger, "export report", err)
		return
	}

	filename := fmt.Sprintf("fraud_report_%s.csv", report.GeneratedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
