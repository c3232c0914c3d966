package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracedRouter(t *testing.T, handler gin.HandlerFunc) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing(TracingConfig{ServiceName: "test-service", Enabled: true, Provider: tp})...)
	router.GET("/report", handler)
	return router, sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false, Provider: tp})...)
	router.GET("/report", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_AnnotatesSpan(t *testing.T) {
	router, sr := setupTracedRouter(t, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/report?date=2023-01-01", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Len(t, sr.Ended(), 1)
	span := sr.Ended()[0]
	assert.Equal(t, "GET /report", span.Name())

	id, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-123", id.AsString())

	date, ok := spanAttr(span, "report.date")
	require.True(t, ok)
	assert.Equal(t, "2023-01-01", date.AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	router, sr := setupTracedRouter(t, func(c *gin.Context) {
		c.Status(http.StatusGatewayTimeout)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report", nil))

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, codes.Error, sr.Ended()[0].Status().Code)
}

func TestTracing_LongRequestIDTruncated(t *testing.T) {
	router, sr := setupTracedRouter(t, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/report", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("a", 500))
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, sr.Ended(), 1)
	id, ok := spanAttr(sr.Ended()[0], "request_id")
	require.True(t, ok)
	assert.Len(t, id.AsString(), MaxRequestIDLength)
}
