package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/erp/salesreport/report"

// ReportMetrics records one data point set per finished report build
type ReportMetrics struct {
	builds   metric.Int64Counter
	duration metric.Float64Histogram
	orders   metric.Int64Counter
}

// NewReportMetrics creates the report instruments on meter
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	builds, err := meter.Int64Counter("reports_built_total",
		metric.WithDescription("Report builds by outcome"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("report_build_duration_seconds",
		metric.WithDescription("Wall time spent building one report"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	orders, err := meter.Int64Counter("report_orders_processed_total",
		metric.WithDescription("Orders folded into successful reports"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	return &ReportMetrics{builds: builds, duration: duration, orders: orders}, nil
}

// RecordBuild counts the build under its outcome and records its duration.
// Orders are only counted for builds that produced a report.
func (m *ReportMetrics) RecordBuild(ctx context.Context, outcome string, elapsed time.Duration, orders int) {
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.builds.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
	if orders > 0 {
		m.orders.Add(ctx, int64(orders))
	}
}
