package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/apperrors"
	"github.com/ekaya-inc/fraudwatch/pkg/audit"
	"github.com/ekaya-inc/fraudwatch/pkg/models"
	sqlpolicy "github.com/ekaya-inc/fraudwatch/pkg/sql"
)

// Alert listing bounds.
const (
	DefaultAlertLimit = 50
	MaxAlertLimit     = 1000
)

// Default comparison periods.
var (
	DefaultPeriod1 = models.PeriodRange{Start: "2025-01-01", End: "2025-01-15"}
	DefaultPeriod2 = models.PeriodRange{Start: "2025-01-16", End: "2025-01-31"}
)

const dateLayout = "2006-01-02"

// DashboardService serves the read-only aggregates behind the dashboard pages.
// Every list result is non-nil.
type DashboardService interface {
	Alerts(ctx context.Context, filter models.AlertFilter) ([]warehouse.Row, error)
	FraudByTime(ctx context.Context) ([]warehouse.Row, error)
	FraudByCategory(ctx context.Context) ([]warehouse.Row, error)
	FraudByGeography(ctx context.Context) ([]warehouse.Row, error)
	ComparePeriods(ctx context.Context, p1, p2 models.PeriodRange) ([]warehouse.Row, error)
	CustomerTransactions(ctx context.Context, customerID string) ([]warehouse.Row, error)
	SearchCustomers(ctx context.Context, search string) ([]warehouse.Row, error)
	TopRiskCustomers(ctx context.Context) ([]warehouse.Row, error)
	Metrics(ctx context.Context) (warehouse.Row, error)
	ModelPerformance(ctx context.Context) (*models.ModelPerformance, error)
	MapData(ctx context.Context) ([]models.MapPoint, error)
}

type dashboardService struct {
	querier warehouse.Querier
	schema  string
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

// NewDashboardService creates a dashboard service reading tables under
// qualifiedSchema (DATABASE.SCHEMA). auditor may be nil.
func NewDashboardService(querier warehouse.Querier, qualifiedSchema string, auditor *audit.SecurityAuditor, logger *zap.Logger) DashboardService {
	return &dashboardService{
		querier: querier,
		schema:  qualifiedSchema,
		auditor: auditor,
		logger:  logger.Named("dashboard-service"),
	}
}

var _ DashboardService = (*dashboardService)(nil)

func (s *dashboardService) q(template string) string {
	return qualify(s.schema, template)
}

// screen rejects a flagged filter value and records the attempt.
func (s *dashboardService) screen(ctx context.Context, operation, name, value string) error {
	hit, err := sqlpolicy.ScreenParameters(map[string]string{name: value})
	if err != nil {
		s.auditor.LogInjectionAttempt(ctx, audit.SQLInjectionDetails{
			ParamName:   hit.ParamName,
			ParamValue:  hit.ParamValue,
			Fingerprint: hit.Fingerprint,
			Operation:   operation,
		})
		return err
	}
	return nil
}

func (s *dashboardService) rows(ctx context.Context, name, statement string, args ...any) ([]warehouse.Row, error) {
	result, err := s.querier.Query(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	return rowsOrEmpty(result), nil
}

const alertsSQL = `
SELECT
  t.TRANSACTION_ID,
  t.TRANSACTION_TIMESTAMP AS FECHA,
  c.NAME AS CLIENTE,
  t.AMOUNT AS MONTO,
  t.MERCHANT_CATEGORY AS CATEGORIA,
  t.CITY AS CIUDAD,
  fl.FRAUD_TYPE AS TIPO_FRAUDE,
  fl.INVESTIGATION_STATUS AS ESTADO
FROM {schema}.TRANSACTIONS t
JOIN {schema}.CUSTOMERS c ON t.CUSTOMER_ID = c.CUSTOMER_ID
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID
WHERE fl.IS_FRAUD = TRUE%s
ORDER BY t.TRANSACTION_TIMESTAMP DESC
LIMIT %d`

func (s *dashboardService) Alerts(ctx context.Context, filter models.AlertFilter) ([]warehouse.Row, error) {
	limit := filter.Limit
	if limit == 0 {
		limit = DefaultAlertLimit
	}
	if limit < 0 {
		return nil, apperrors.NewValidationError("limit", "must be positive")
	}
	if limit > MaxAlertLimit {
		limit = MaxAlertLimit
	}

	pending := ""
	if filter.PendingOnly {
		pending = " AND fl.INVESTIGATION_STATUS IN ('pending', 'investigating')"
	}

	return s.rows(ctx, "alerts", fmt.Sprintf(s.q(alertsSQL), pending, limit))
}

const fraudByTimeSQL = `
SELECT
  DATE_TRUNC('day', t.TRANSACTION_TIMESTAMP) AS FECHA,
  COUNT(*) AS TOTAL_TX,
  SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) AS FRAUDES,
  ROUND(SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS TASA_FRAUDE
FROM {schema}.TRANSACTIONS t
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID
GROUP BY 1
ORDER BY 1`

func (s *dashboardService) FraudByTime(ctx context.Context) ([]warehouse.Row, error) {
	return s.rows(ctx, "fraud by time", s.q(fraudByTimeSQL))
}

const fraudByCategorySQL = `
SELECT
  t.MERCHANT_CATEGORY AS CATEGORIA,
  COUNT(*) AS TOTAL_TX,
  SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) AS FRAUDES,
  ROUND(SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS TASA_FRAUDE,
  SUM(CASE WHEN fl.IS_FRAUD THEN t.AMOUNT ELSE 0 END) AS MONTO_FRAUDE
FROM {schema}.TRANSACTIONS t
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID
GROUP BY 1
ORDER BY TASA_FRAUDE DESC`

func (s *dashboardService) FraudByCategory(ctx context.Context) ([]warehouse.Row, error) {
	return s.rows(ctx, "fraud by category", s.q(fraudByCategorySQL))
}

const fraudByGeographySQL = `
SELECT
  t.CITY AS CIUDAD,
  COUNT(*) AS TOTAL_TX,
  SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) AS FRAUDES,
  ROUND(SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) * 100.0 / NULLIF(COUNT(*), 0), 2) AS TASA_FRAUDE,
  SUM(CASE WHEN fl.IS_FRAUD THEN t.AMOUNT ELSE 0 END) AS MONTO_FRAUDE
FROM {schema}.TRANSACTIONS t
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID
GROUP BY 1
ORDER BY FRAUDES DESC
LIMIT 20`

func (s *dashboardService) FraudByGeography(ctx context.Context) ([]warehouse.Row, error) {
	return s.rows(ctx, "fraud by geography", s.q(fraudByGeographySQL))
}

const periodSQL = `
SELECT
  '%s' AS PERIODO,
  COUNT(*) AS TOTAL_TX,
  SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) AS FRAUDES,
  ROUND(SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) * 100.0 / NULLIF(COUNT(*), 0), 2) AS TASA_FRAUDE,
  SUM(t.AMOUNT) AS MONTO_TOTAL,
  SUM(CASE WHEN fl.IS_FRAUD THEN t.AMOUNT ELSE 0 END) AS MONTO_FRAUDE
FROM {schema}.TRANSACTIONS t
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID
WHERE t.TRANSACTION_TIMESTAMP BETWEEN ? AND ?`

// ComparePeriods returns one aggregate row per period, period 1 first.
func (s *dashboardService) ComparePeriods(ctx context.Context, p1, p2 models.PeriodRange) ([]warehouse.Row, error) {
	for i, p := range []models.PeriodRange{p1, p2} {
		if err := validatePeriod(fmt.Sprintf("period%d", i+1), p); err != nil {
			return nil, err
		}
	}

	statement := fmt.Sprintf(s.q(periodSQL), "Period 1") +
		"\nUNION ALL" +
		fmt.Sprintf(s.q(periodSQL), "Period 2")

	return s.rows(ctx, "period comparison", statement, p1.Start, p1.End, p2.Start, p2.End)
}

func validatePeriod(name string, p models.PeriodRange) error {
	start, err := time.Parse(dateLayout, p.Start)
	if err != nil {
		return apperrors.NewValidationError(name+"_start", "must be a YYYY-MM-DD date")
	}
	end, err := time.Parse(dateLayout, p.End)
	if err != nil {
		return apperrors.NewValidationError(name+"_end", "must be a YYYY-MM-DD date")
	}
	if end.Before(start) {
		return apperrors.NewValidationError(name+"_end", "must not be before "+name+"_start")
	}
	return nil
}

const customerTransactionsSQL = `
SELECT
  t.TRANSACTION_ID,
  t.TRANSACTION_TIMESTAMP AS FECHA,
  t.AMOUNT AS MONTO,
  t.MERCHANT_CATEGORY AS CATEGORIA,
  t.CITY AS CIUDAD,
  t.CHANNEL AS CANAL,
  CASE WHEN fl.IS_FRAUD THEN 'Fraude' ELSE 'Normal' END AS ESTADO
FROM {schema}.TRANSACTIONS t
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID
WHERE t.CUSTOMER_ID = ?
ORDER BY t.TRANSACTION_TIMESTAMP DESC
LIMIT 100`

func (s *dashboardService) CustomerTransactions(ctx context.Context, customerID string) ([]warehouse.Row, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, apperrors.NewValidationError("id", "is required")
	}
	if err := s.screen(ctx, "customer_transactions", "id", customerID); err != nil {
		return nil, err
	}
	return s.rows(ctx, "customer transactions", s.q(customerTransactionsSQL), customerID)
}

const searchCustomersSQL = `
SELECT CUSTOMER_ID, NAME, EMAIL, CITY, COUNTRY, RISK_SCORE
FROM {schema}.CUSTOMERS
WHERE LOWER(NAME) LIKE LOWER(?)
   OR LOWER(EMAIL) LIKE LOWER(?)
ORDER BY RISK_SCORE DESC
LIMIT 20`

func (s *dashboardService) SearchCustomers(ctx context.Context, search string) ([]warehouse.Row, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return s.TopRiskCustomers(ctx)
	}
	if err := s.screen(ctx, "search_customers", "search", search); err != nil {
		return nil, err
	}
	pattern := "%" + search + "%"
	return s.rows(ctx, "customers", s.q(searchCustomersSQL), pattern, pattern)
}

const topRiskCustomersSQL = `
SELECT c.CUSTOMER_ID, c.NAME, c.EMAIL, c.CITY, c.COUNTRY, c.RISK_SCORE
FROM {schema}.CUSTOMERS c
ORDER BY c.RISK_SCORE DESC
LIMIT 10`

func (s *dashboardService) TopRiskCustomers(ctx context.Context) ([]warehouse.Row, error) {
	return s.rows(ctx, "top risk customers", s.q(topRiskCustomersSQL))
}

const metricsSQL = `
SELECT
  COUNT(*) AS TOTAL_TRANSACTIONS,
  SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) AS TOTAL_FRAUDS,
  SUM(t.AMOUNT) AS TOTAL_AMOUNT,
  SUM(CASE WHEN fl.IS_FRAUD THEN t.AMOUNT ELSE 0 END) AS FRAUD_AMOUNT,
  COUNT(DISTINCT t.CUSTOMER_ID) AS UNIQUE_CUSTOMERS,
  ROUND(SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS FRAUD_RATE
FROM {schema}.TRANSACTIONS t
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID`

// Metrics returns the headline KPIs, or an empty row when there is no data.
func (s *dashboardService) Metrics(ctx context.Context) (warehouse.Row, error) {
	rows, err := s.rows(ctx, "metrics", s.q(metricsSQL))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return warehouse.Row{}, nil
	}
	return rows[0], nil
}

const modelPerformanceSQL = `
SELECT
  SUM(CASE WHEN st.XGB_PREDICTION = 1 AND tf.IS_FRAUD = TRUE THEN 1 ELSE 0 END) AS TRUE_POSITIVES,
  SUM(CASE WHEN st.XGB_PREDICTION = 1 AND tf.IS_FRAUD = FALSE THEN 1 ELSE 0 END) AS FALSE_POSITIVES,
  SUM(CASE WHEN st.XGB_PREDICTION = 0 AND tf.IS_FRAUD = TRUE THEN 1 ELSE 0 END) AS FALSE_NEGATIVES,
  SUM(CASE WHEN st.XGB_PREDICTION = 0 AND tf.IS_FRAUD = FALSE THEN 1 ELSE 0 END) AS TRUE_NEGATIVES
FROM {schema}.SCORED_TRANSACTIONS st
JOIN {schema}.TRANSACTION_FEATURES tf ON st.TRANSACTION_ID = tf.TRANSACTION_ID`

func (s *dashboardService) ModelPerformance(ctx context.Context) (*models.ModelPerformance, error) {
	rows, err := s.rows(ctx, "model performance", s.q(modelPerformanceSQL))
	if err != nil {
		return nil, err
	}

	perf := &models.ModelPerformance{}
	if len(rows) > 0 {
		perf.TruePositives = rowInt(rows[0], "TRUE_POSITIVES")
		perf.FalsePositives = rowInt(rows[0], "FALSE_POSITIVES")
		perf.FalseNegatives = rowInt(rows[0], "FALSE_NEGATIVES")
		perf.TrueNegatives = rowInt(rows[0], "TRUE_NEGATIVES")
	}
	derivePerformance(perf)
	return perf, nil
}

// derivePerformance fills the percentage rates; an undefined ratio is 0.
func derivePerformance(p *models.ModelPerformance) {
	tp := float64(p.TruePositives)
	fp := float64(p.FalsePositives)
	fn := float64(p.FalseNegatives)
	tn := float64(p.TrueNegatives)

	precision := ratio(tp, tp+fp)
	recall := ratio(tp, tp+fn)
	f1 := ratio(2*precision*recall, precision+recall)
	accuracy := ratio(tp+tn, tp+tn+fp+fn)

	p.Precision = precision * 100
	p.Recall = recall * 100
	p.F1 = f1 * 100
	p.Accuracy = accuracy * 100
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

const mapDataSQL = `
SELECT
  t.CITY,
  COUNT(*) AS TOTAL_TRANSACTIONS,
  ROUND(SUM(CASE WHEN f.IS_FRAUD = 1 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS FRAUD_RATE
FROM {schema}.TRANSACTIONS t
LEFT JOIN {schema}.FRAUD_LABELS f ON t.TRANSACTION_ID = f.TRANSACTION_ID
GROUP BY t.CITY
ORDER BY TOTAL_TRANSACTIONS DESC`

func (s *dashboardService) MapData(ctx context.Context) ([]models.MapPoint, error) {
	rows, err := s.rows(ctx, "map data", s.q(mapDataSQL))
	if err != nil {
		return nil, err
	}

	points := make([]models.MapPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, models.MapPoint{
			City:      rowString(row, "CITY"),
			Count:     rowInt(row, "TOTAL_TRANSACTIONS"),
			FraudRate: rowFloat(row, "FRAUD_RATE"),
		})
	}
	return points, nil
}
