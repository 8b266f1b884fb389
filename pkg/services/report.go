package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/models"
)

// ReportService builds the exportable fraud report.
type ReportService interface {
	Generate(ctx context.Context) (*models.FraudReport, error)
}

type reportService struct {
	querier warehouse.Querier
	schema  string
	now     func() time.Time
	logger  *zap.Logger
}

// NewReportService creates a report service reading tables under
// qualifiedSchema (DATABASE.SCHEMA).
func NewReportService(querier warehouse.Querier, qualifiedSchema string, logger *zap.Logger) ReportService {
	return &reportService{
		querier: querier,
		schema:  qualifiedSchema,
		now:     time.Now,
		logger:  logger.Named("report-service"),
	}
}

var _ ReportService = (*reportService)(nil)

func (s *reportService) q(template string) string {
	return qualify(s.schema, template)
}

const reportSummarySQL = `
SELECT
  COUNT(*) AS TOTAL_TRANSACTIONS,
  SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) AS TOTAL_FRAUDS,
  ROUND(SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS FRAUD_RATE,
  SUM(t.AMOUNT) AS TOTAL_AMOUNT,
  SUM(CASE WHEN fl.IS_FRAUD THEN t.AMOUNT ELSE 0 END) AS FRAUD_AMOUNT
FROM {schema}.TRANSACTIONS t
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID`

const reportTopCategoriesSQL = `
SELECT
  t.MERCHANT_CATEGORY AS CATEGORIA,
  SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) AS FRAUDES,
  ROUND(SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS TASA_FRAUDE
FROM {schema}.TRANSACTIONS t
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID
GROUP BY 1
ORDER BY FRAUDES DESC
LIMIT 10`

const reportTopCitiesSQL = `
SELECT
  t.CITY AS CIUDAD,
  SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) AS FRAUDES,
  ROUND(SUM(CASE WHEN fl.IS_FRAUD THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS TASA_FRAUDE
FROM {schema}.TRANSACTIONS t
JOIN {schema}.FRAUD_LABELS fl ON t.TRANSACTION_ID = fl.TRANSACTION_ID
GROUP BY 1
ORDER BY FRAUDES DESC
LIMIT 10`

// Generate runs the summary and both top-10 breakdowns concurrently.
func (s *reportService) Generate(ctx context.Context) (*models.FraudReport, error) {
	var summary, categories, cities *warehouse.QueryResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = s.querier.Query(gctx, s.q(reportSummarySQL))
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.querier.Query(gctx, s.q(reportTopCategoriesSQL))
		return err
	})
	g.Go(func() (err error) {
		cities, err = s.querier.Query(gctx, s.q(reportTopCitiesSQL))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	report := &models.FraudReport{
		GeneratedAt:     s.now().UTC(),
		Summary:         map[string]any{},
		FraudByCategory: rowsOrEmpty(categories),
		FraudByCity:     rowsOrEmpty(cities),
	}
	if row, ok := summary.First(); ok {
		report.Summary = row
	}

	s.logger.Debug("Report generated",
		zap.Int("categories", len(report.FraudByCategory)),
		zap.Int("cities", len(report.FraudByCity)))
	return report, nil
}

// WriteReportCSV renders report as a sectioned CSV document.
func WriteReportCSV(w io.Writer, report *models.FraudReport) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"FRAUD REPORT"},
		{"Generated", report.GeneratedAt.Format(time.RFC3339)},
		{},
		{"SUMMARY"},
		{"Total Transactions", csvValue(report.Summary, "TOTAL_TRANSACTIONS")},
		{"Total Frauds", csvValue(report.Summary, "TOTAL_FRAUDS")},
		{"Fraud Rate", csvValue(report.Summary, "FRAUD_RATE") + "%"},
		{"Total Amount", "$" + csvValue(report.Summary, "TOTAL_AMOUNT")},
		{"Fraud Amount", "$" + csvValue(report.Summary, "FRAUD_AMOUNT")},
		{},
		{"FRAUD BY CATEGORY"},
		{"Category", "Frauds", "Fraud Rate"},
	}
	for _, row := range report.FraudByCategory {
		records = append(records, []string{
			csvValue(row, "CATEGORIA"),
			csvValue(row, "FRAUDES"),
			csvValue(row, "TASA_FRAUDE") + "%",
		})
	}

	records = append(records, []string{}, []string{"FRAUD BY CITY"}, []string{"City", "Frauds", "Fraud Rate"})
	for _, row := range report.FraudByCity {
		records = append(records, []string{
			csvValue(row, "CIUDAD"),
			csvValue(row, "FRAUDES"),
			csvValue(row, "TASA_FRAUDE") + "%",
		})
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write report csv: %w", err)
	}
	return nil
}

// csvValue renders a cell without thousands separators.
func csvValue(row warehouse.Row, key string) string {
	v, _ := rowValue(row, key)
	switch n := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case string:
		return n
	}
	return fmt.Sprint(v)
}
