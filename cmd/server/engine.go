package main

import (
	"fmt"

	reportapp "github.com/erp/salesreport/internal/application/report"
	"github.com/erp/salesreport/internal/domain/report"
	"github.com/erp/salesreport/internal/infrastructure/config"
	"github.com/erp/salesreport/internal/infrastructure/logger"
	"github.com/erp/salesreport/internal/infrastructure/store"
	"github.com/erp/salesreport/internal/infrastructure/telemetry"
	"github.com/erp/salesreport/internal/interfaces/http/handler"
	"github.com/erp/salesreport/internal/interfaces/http/middleware"
	"github.com/erp/salesreport/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// newEngine wires the report service and its HTTP surface over st
func newEngine(cfg *config.Config, log *zap.Logger, st *store.Store, tel *telemetry.Telemetry) (*gin.Engine, error) {
	joinMode, ok := report.ParseJoinMode(cfg.Report.JoinMode)
	if !ok {
		return nil, fmt.Errorf("unknown join mode %q", cfg.Report.JoinMode)
	}
	basis, ok := report.ParseCommissionBasis(cfg.Report.CommissionBasis)
	if !ok {
		return nil, fmt.Errorf("unknown commission basis %q", cfg.Report.CommissionBasis)
	}

	metrics, err := tel.ReportMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to create report metrics: %w", err)
	}

	reportService := reportapp.NewReportService(
		reportapp.NewRecordFilter(st.Source(), log),
		reportapp.WithJoinMode(joinMode),
		reportapp.WithCommissionBasis(basis),
		reportapp.WithLogger(log),
		reportapp.WithTracer(tel.Tracer.Tracer("github.com/erp/salesreport/report")),
		reportapp.WithBuildRecorder(metrics),
	)

	reportHandler := handler.NewReportHandler(reportService,
		handler.WithReportTimeout(cfg.HTTP.ReportTimeout),
	)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, st, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, fmt.Errorf("failed to register validations: %w", err)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Tracing sits before the request logger so log lines carry trace ids
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tel.Enabled(),
	})...)
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(cfg.HTTP.CORSAllowOrigins))

	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.GET("/", handler.Index)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(systemHandler).
		RegisterRoot(reportHandler).
		Setup()

	return engine, nil
}
