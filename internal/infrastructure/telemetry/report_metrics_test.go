package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func TestReportMetrics_RecordBuild(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewReportMetrics(provider.Meter(meterName))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordBuild(ctx, "ok", 20*time.Millisecond, 3)
	m.RecordBuild(ctx, "ok", 30*time.Millisecond, 2)
	m.RecordBuild(ctx, "lookup_failed", 5*time.Millisecond, 0)

	metrics := collect(t, reader)

	builds, ok := metrics["reports_built_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	perOutcome := make(map[string]int64)
	for _, dp := range builds.DataPoints {
		outcome, _ := dp.Attributes.Value(attribute.Key("outcome"))
		perOutcome[outcome.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"ok": 2, "lookup_failed": 1}, perOutcome)

	orders, ok := metrics["report_orders_processed_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, orders.DataPoints, 1)
	assert.Equal(t, int64(5), orders.DataPoints[0].Value)

	duration, ok := metrics["report_build_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range duration.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}
