package telemetry

import (
	"context"
	"errors"

	"github.com/erp/salesreport/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Telemetry bundles the trace, metric and log pipelines of the process
type Telemetry struct {
	Tracer  *TracerProvider
	Meter   *MeterProvider
	Logs    *LoggerProvider
	service string
}

// Setup starts every pipeline cfg enables. Providers already started are
// shut down again when a later one fails.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Telemetry, error) {
	tracer, err := NewTracerProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	meter, err := NewMeterProvider(ctx, cfg, logger)
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, err
	}

	logs, err := NewLoggerProvider(ctx, cfg, logger)
	if err != nil {
		_ = meter.Shutdown(ctx)
		_ = tracer.Shutdown(ctx)
		return nil, err
	}

	return &Telemetry{Tracer: tracer, Meter: meter, Logs: logs, service: cfg.ServiceName}, nil
}

// Enabled reports whether spans are exported
func (t *Telemetry) Enabled() bool {
	return t.Tracer.IsEnabled()
}

// WrapLogger tees logger into the OTLP log pipeline at info level and above
func (t *Telemetry) WrapLogger(logger *zap.Logger) *zap.Logger {
	return t.Logs.Bridge(logger, t.service, zapcore.InfoLevel)
}

// ReportMetrics creates the report build instruments on the process meter
func (t *Telemetry) ReportMetrics() (*ReportMetrics, error) {
	return NewReportMetrics(t.Meter.Meter(meterName))
}

// Shutdown flushes and stops every pipeline, logs last
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.Tracer.Shutdown(ctx),
		t.Meter.Shutdown(ctx),
		t.Logs.Shutdown(ctx),
	)
}
