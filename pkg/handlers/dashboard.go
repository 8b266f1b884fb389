package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/models"
	"github.com/ekaya-inc/fraudwatch/pkg/services"
)

// DashboardHandler serves the read-only dashboard endpoints.
type DashboardHandler struct {
	dashboardService services.DashboardService
	logger           *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboardService services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// RegisterRoutes registers the dashboard handler's routes on the given mux.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /alerts", h.Alerts)
	mux.HandleFunc("GET /fraud-by-time", h.FraudByTime)
	mux.HandleFunc("GET /fraud-by-category", h.FraudByCategory)
	mux.HandleFunc("GET /fraud-by-geography", h.FraudByGeography)
	mux.HandleFunc("GET /compare", h.Compare)
	mux.HandleFunc("GET /customers", h.Customers)
	mux.HandleFunc("GET /metrics", h.Metrics)
	mux.HandleFunc("GET /model-performance", h.ModelPerformance)
	mux.HandleFunc("GET /map-data", h.MapData)
}

// Alerts handles GET /alerts?pending=<bool>&limit=<int>
func (h *DashboardHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	limit, ok := ParseIntQuery(w, r, "limit", 0, h.logger)
	if !ok {
		return
	}
	filter := models.AlertFilter{
		PendingOnly: ParseBoolQuery(r, "pending"),
		Limit:       limit,
	}

	rows, err := h.dashboardService.Alerts(r.Context(), filter)
	h.writeRows(w, "fetch alerts", rows, err)
}

// FraudByTime handles GET /fraud-by-time
func (h *DashboardHandler) FraudByTime(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboardService.FraudByTime(r.Context())
	h.writeRows(w, "fetch fraud by time", rows, err)
}

// FraudByCategory handles GET /fraud-by-category
func (h *DashboardHandler) FraudByCategory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboardService.FraudByCategory(r.Context())
	h.writeRows(w, "fetch fraud by category", rows, err)
}

// FraudByGeography handles GET /fraud-by-geography
func (h *DashboardHandler) FraudByGeography(w http.ResponseWriter, r *http.Request) {
	rows, err := h.dashboardService.FraudByGeography(r.Context())
	h.writeRows(w, "fetch fraud by geography", rows, err)
}

// Compare handles GET /compare?period1_start=&period1_end=&period2_start=&period2_end=
// Missing bounds fall back to the first and second half of January 2025.
func (h *DashboardHandler) Compare(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	p1 := models.PeriodRange{
		Start: queryOr(query.Get("period1_start"), services.DefaultPeriod1.Start),
		End:   queryOr(query.Get("period1_end"), services.DefaultPeriod1.End),
	}
	p2 := models.PeriodRange{
		Start: queryOr(query.Get("period2_start"), services.DefaultPeriod2.Start),
		End:   queryOr(query.Get("period2_end"), services.DefaultPeriod2.End),
	}

	rows, err := h.dashboardService.ComparePeriods(r.Context(), p1, p2)
	h.writeRows(w, "compare periods", rows, err)
}

// Customers handles GET /customers?id= | ?search=
// With neither parameter the highest-risk customers are listed.
func (h *DashboardHandler) Customers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if id := strings.TrimSpace(query.Get("id")); id != "" {
		rows, err := h.dashboardService.CustomerTransactions(r.Context(), id)
		if err != nil {
			writeError(w, h.logger, "fetch customer transactions", err)
			return
		}
		respond(w, h.logger, models.CustomerTransactions{Transactions: rows})
		return
	}

	var (
		rows []warehouse.Row
		err  error
	)
	if search := strings.TrimSpace(query.Get("search")); search != "" {
		rows, err = h.dashboardService.SearchCustomers(r.Context(), search)
	} else {
		rows, err = h.dashboardService.TopRiskCustomers(r.Context())
	}
	if err != nil {
		writeError(w, h.logger, "fetch customers", err)
		return
	}
	respond(w, h.logger, models.CustomerList{Customers: rows})
}

// Metrics handles GET /metrics
func (h *DashboardHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboardService.Metrics(r.Context())
	if err != nil {
		writeError(w, h.logger, "fetch metrics", err)
		return
	}
	respond(w, h.logger, metrics)
}

// ModelPerformance handles GET /model-performance
func (h *DashboardHandler) ModelPerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.dashboardService.ModelPerformance(r.Context())
	if err != nil {
		writeError(w, h.logger, "fetch model performance", err)
		return
	}
	respond(w, h.logger, perf)
}

// MapData handles GET /map-data
func (h *DashboardHandler) MapData(w http.ResponseWriter, r *http.Request) {
	points, err := h.dashboardService.MapData(r.Context())
	if err != nil {
		writeError(w, h.logger, "fetch map data", err)
		return
	}
	respond(w, h.logger, models.MapData{Data: points})
}

func (h *DashboardHandler) writeRows(w http.ResponseWriter, action string, rows []warehouse.Row, err error) {
	if err != nil {
		writeError(w, h.logger, action, err)
		return
	}
	if rows == nil {
		rows = []warehouse.Row{}
	}
	respond(w, h.logger, rows)
}
