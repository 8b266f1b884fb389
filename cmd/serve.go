package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/fraudwatch/pkg/handlers"
	"github.com/ekaya-inc/fraudwatch/pkg/mcp"
	"github.com/ekaya-inc/fraudwatch/pkg/mcp/tools"
	"github.com/ekaya-inc/fraudwatch/pkg/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("Starting fraudwatch",
			zap.String("addr", srv.Addr),
			zap.String("version", a.cfg.Version))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down", zap.Duration("timeout", a.cfg.ShutdownTimeout()))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// routes builds the HTTP handler tree.
func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	handlers.NewHealthHandler(a.cfg, a.manager, a.logger).RegisterRoutes(mux)
	handlers.NewDashboardHandler(a.dashboardService, a.logger).RegisterRoutes(mux)
	handlers.NewQueriesHandler(a.queryService, a.logger).RegisterRoutes(mux)
	handlers.NewPredictionsHandler(a.predictionService, a.logger).RegisterRoutes(mux)
	handlers.NewIntelligenceHandler(a.intelligenceService, a.logger).RegisterRoutes(mux)
	handlers.NewExportHandler(a.reportService, a.logger).RegisterRoutes(mux)

	mcpServer := mcp.NewFraudServer(a.cfg.Version, &tools.FraudToolDeps{
		IntelligenceService: a.intelligenceService,
		QueryService:        a.queryService,
		DashboardService:    a.dashboardService,
	}, a.manager, a.logger)
	handlers.NewMCPHandler(mcpServer, a.logger).RegisterRoutes(mux)

	// Recoverer is outermost so panics in logging are caught too.
	return middleware.Recoverer(a.logger)(middleware.RequestLogger(a.logger)(mux))
}
