package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	reportapp "github.com/erp/salesreport/internal/application/report"
	"github.com/erp/salesreport/internal/infrastructure/config"
	"github.com/erp/salesreport/internal/infrastructure/store"
	"github.com/erp/salesreport/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "sales-report", Env: "test"},
		HTTP: config.HTTPConfig{
			ReportTimeout: 5 * time.Second,
		},
		Store: config.StoreConfig{
			Driver:    config.StoreDriverCSV,
			DataDir:   "../../data",
			Delimiter: ",",
		},
		Report: config.ReportConfig{
			JoinMode:        "positional",
			CommissionBasis: "running_count",
		},
		Telemetry: config.TelemetryConfig{ServiceName: "sales-report"},
	}
}

func setupEngine(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry, zap.NewNop())
	require.NoError(t, err)

	st, err := store.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	engine, err := newEngine(cfg, zap.NewNop(), st, tel)
	require.NoError(t, err)
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestEngine_Report(t *testing.T) {
	engine := setupEngine(t, testConfig())

	for _, path := range []string{"/report?date=2019-08-01", "/api/v1/report?date=2019-08-01"} {
		t.Run(path, func(t *testing.T) {
			w := get(engine, path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

			var body reportapp.DailyReportResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, 3, body.Items)
			assert.Equal(t, 2, body.Customers)
			assert.InDelta(t, 60.0, body.TotalDiscountAmount, 1e-9)
			assert.InDelta(t, 19.44, body.Commissions.Promotions["3"], 1e-9)
			assert.InDelta(t, 0.0, body.Commissions.Promotions["2"], 1e-9)
		})
	}
}

func TestEngine_InvalidDate(t *testing.T) {
	engine := setupEngine(t, testConfig())

	w := get(engine, "/report?date=2019-02-30")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Input date is not valid", w.Body.String())
}

func TestEngine_IndexAndHealth(t *testing.T) {
	engine := setupEngine(t, testConfig())

	index := get(engine, "/")
	assert.Equal(t, http.StatusOK, index.Code)
	assert.Contains(t, index.Body.String(), `action="/report"`)

	health := get(engine, "/api/v1/system/health")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestEngine_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.RateLimitEnabled = true
	cfg.HTTP.RateLimitRequests = 1
	cfg.HTTP.RateLimitWindow = time.Hour
	engine := setupEngine(t, cfg)

	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/system/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(engine, "/api/v1/system/ping").Code)
}

func TestNewEngine_UnknownJoinMode(t *testing.T) {
	cfg := testConfig()
	cfg.Report.JoinMode = "sideways"

	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry, zap.NewNop())
	require.NoError(t, err)
	st, err := store.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	_, err = newEngine(cfg, zap.NewNop(), st, tel)
	assert.Error(t, err)
}
