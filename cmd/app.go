package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse"
	"github.com/ekaya-inc/fraudwatch/pkg/adapters/warehouse/snowflake"
	"github.com/ekaya-inc/fraudwatch/pkg/audit"
	"github.com/ekaya-inc/fraudwatch/pkg/config"
	"github.com/ekaya-inc/fraudwatch/pkg/llm"
	"github.com/ekaya-inc/fraudwatch/pkg/logging"
	"github.com/ekaya-inc/fraudwatch/pkg/prompts"
	"github.com/ekaya-inc/fraudwatch/pkg/services"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	manager  *warehouse.ConnectionManager
	executor *warehouse.Executor

	queryService        services.QueryService
	dashboardService    services.DashboardService
	predictionService   services.PredictionService
	reportService       services.ReportService
	intelligenceService services.IntelligenceService
}

// newApp loads configuration and wires the warehouse, completion backend and
// services. No session is opened until the first statement runs.
func newApp(path string) (*app, error) {
	cfg, err := config.LoadFile(path, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := snowflake.QuietDriverLogs(); err != nil {
		logger.Warn("Failed to lower warehouse driver log level", zap.Error(err))
	}

	sf := cfg.Snowflake
	connector := snowflake.NewConnector(snowflake.Config{
		Account:      sf.Account,
		Warehouse:    sf.Warehouse,
		Database:     sf.Database,
		Schema:       sf.Schema,
		Role:         sf.Role,
		Host:         sf.Host,
		LoginTimeout: sf.LoginTimeout(),
	}, logger)

	manager := warehouse.NewConnectionManager(
		connector,
		warehouse.FileTokenSource{Path: sf.TokenPath},
		warehouse.StaticCredentials{User: sf.User, Password: sf.Password},
		sf.Account,
		logger,
	)
	executor := warehouse.NewExecutor(manager, logger)

	completer, err := llm.NewCompleter(cfg.LLM, executor, logger)
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("failed to create completer: %w", err)
	}

	schemaContext, err := prompts.LoadSchemaContext()
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("failed to load schema context: %w", err)
	}

	schema := sf.QualifiedSchema()
	auditor := audit.NewSecurityAuditor(logger)
	a := &app{
		cfg:      cfg,
		logger:   logger,
		manager:  manager,
		executor: executor,

		queryService:        services.NewQueryService(executor, auditor, logger),
		dashboardService:    services.NewDashboardService(executor, schema, auditor, logger),
		predictionService:   services.NewPredictionService(executor, schema, logger),
		reportService:       services.NewReportService(executor, schema, logger),
		intelligenceService: services.NewIntelligenceService(completer, executor, schemaContext, schema, auditor, logger),
	}

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("account", sf.Account),
		zap.String("schema", schema),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", completer.Model()))

	return a, nil
}

// close releases the warehouse session and flushes logs.
func (a *app) close() {
	if err := a.manager.Close(); err != nil {
		a.logger.Warn("Failed to close warehouse session", zap.Error(err))
	}
	_ = a.logger.Sync()
}
