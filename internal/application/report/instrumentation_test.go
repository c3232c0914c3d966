package report

import (
	"context"
	"testing"
	"time"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type recordedBuild struct {
	outcome string
	orders  int
}

type fakeRecorder struct {
	builds []recordedBuild
}

func (f *fakeRecorder) RecordBuild(_ context.Context, outcome string, elapsed time.Duration, orders int) {
	f.builds = append(f.builds, recordedBuild{outcome: outcome, orders: orders})
}

func TestReportService_Instrumentation(t *testing.T) {
	tests := []struct {
		name    string
		src     *memorySource
		date    string
		outcome string
		orders  int
		failed  bool
	}{
		{
			name:    "successful build",
			src:     singleOrderSource(),
			date:    reportDate,
			outcome: OutcomeOK,
			orders:  1,
		},
		{
			name:    "invalid date",
			src:     singleOrderSource(),
			date:    "2023-02-30",
			outcome: OutcomeInvalidDate,
		},
		{
			name: "missing vendor rate",
			src: newMemorySource().
				addOrder("1", reportDate, "V9", "C1").
				addOrderLine("1", "P1", "0", "0", "10"),
			date:    reportDate,
			outcome: OutcomeLookupFailed,
			failed:  true,
		},
		{
			name:    "missing store",
			src:     &memorySource{stores: nil, reads: map[report.EntityType]int{}},
			date:    reportDate,
			outcome: OutcomeError,
			failed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
			recorder := &fakeRecorder{}

			svc := newTestService(tt.src,
				WithTracer(tp.Tracer("test")),
				WithBuildRecorder(recorder),
			)
			_, _ = svc.BuildReport(context.Background(), tt.date)

			require.Len(t, recorder.builds, 1)
			assert.Equal(t, recordedBuild{outcome: tt.outcome, orders: tt.orders}, recorder.builds[0])

			ended := spans.Ended()
			require.Len(t, ended, 1)
			assert.Equal(t, "report.BuildReport", ended[0].Name())
			if tt.failed {
				assert.Equal(t, codes.Error, ended[0].Status().Code)
				assert.Equal(t, tt.outcome, ended[0].Status().Description)
			} else {
				assert.NotEqual(t, codes.Error, ended[0].Status().Code)
			}
		})
	}
}
