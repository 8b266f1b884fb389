package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/models"
)

// mockDashboardService is a configurable mock for dashboard handler tests.
// Each method returns rows/err and records its arguments.
type mockDashboardService struct {
	rows        []warehouse.Row
	metrics     warehouse.Row
	performance *models.ModelPerformance
	points      []models.MapPoint
	err         error

	calls       []string
	alertFilter models.AlertFilter
	periods     []models.PeriodRange
	argument    string
}

func (m *mockDashboardService) record(name string) { m.calls = append(m.calls, name) }

func (m *mockDashboardService) Alerts(ctx context.Context, filter models.AlertFilter) ([]warehouse.Row, error) {
	m.record("Alerts")
	m.alertFilter = filter
	return m.rows, m.err
}

func (m *mockDashboardService) FraudByTime(ctx context.Context) ([]warehouse.Row, error) {
	m.record("FraudByTime")
	return m.rows, m.err
}

func (m *mockDashboardService) FraudByCategory(ctx context.Context) ([]warehouse.Row, error) {
	m.record("FraudByCategory")
	return m.rows, m.err
}

func (m *mockDashboardService) FraudByGeography(ctx context.Context) ([]warehouse.Row, error) {
	m.record("FraudByGeography")
	return m.rows, m.err
}

func (m *mockDashboardService) ComparePeriods(ctx context.Context, p1, p2 models.PeriodRange) ([]warehouse.Row, error) {
	m.record("ComparePeriods")
	m.periods = []models.PeriodRange{p1, p2}
	return m.rows, m.err
}

func (m *mockDashboardService) CustomerTransactions(ctx context.Context, customerID string) ([]warehouse.Row, error) {
	m.record("CustomerTransactions")
	m.argument = customerID
	return m.rows, m.err
}

func (m *mockDashboardService) SearchCustomers(ctx context.Context, search string) ([]warehouse.Row, error) {
	m.record("SearchCustomers")
	m.argument = search
	return m.rows, m.err
}

func (m *mockDashboardService) TopRiskCustomers(ctx context.Context) ([]warehouse.Row, error) {
	m.record("TopRiskCustomers")
	return m.rows, m.err
}

func (m *mockDashboardService) Metrics(ctx context.Context) (warehouse.Row, error) {
	m.record("Metrics")
	return m.metrics, m.err
}

func (m *mockDashboardService) ModelPerformance(ctx context.Context) (*models.ModelPerformance, error) {
	m.record("ModelPerformance")
	return m.performance, m.err
}

func (m *mockDashboardService) MapData(ctx context.Context) ([]models.MapPoint, error) {
	m.record("MapData")
	return m.points, m.err
}

type mockQueryService struct {
	result     *warehouse.QueryResult
	err        error
	statements []string
}

func (m *mockQueryService) ExecuteSelect(ctx context.Context, statement string) (*warehouse.QueryResult, error) {
	m.statements = append(m.statements, statement)
	return m.result, m.err
}

type mockPredictionService struct {
	response *models.PredictionResponse
	err      error
	requests []*models.PredictionRequest
}

func (m *mockPredictionService) Predict(ctx context.Context, req *models.PredictionRequest) (*models.PredictionResponse, error) {
	m.requests = append(m.requests, req)
	return m.response, m.err
}

type mockIntelligenceService struct {
	turn      *models.IntelligenceTurn
	err       error
	questions []string
}

func (m *mockIntelligenceService) Ask(ctx context.Context, question string) (*models.IntelligenceTurn, error) {
	m.questions = append(m.questions, question)
	return m.turn, m.err
}

type mockReportService struct {
	report *models.FraudReport
	err    error
	calls  int
}

func (m *mockReportService) Generate(ctx context.Context) (*models.FraudReport, error) {
	m.calls++
	return m.report, m.err
}

// serve routes one request through a mux holding the given routes.
func serve(register func(*http.ServeMux), method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	register(mux)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}
