package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/salesreport/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	err error
}

func (f *fakeStore) Check(context.Context) error { return f.err }
func (f *fakeStore) Driver() string              { return "csv" }

func serveSystem(h *SystemHandler, path string) *httptest.ResponseRecorder {
	router := gin.New()
	h.RegisterRoutes(router.Group("/api/v1"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("store reachable", func(t *testing.T) {
		w := serveSystem(NewSystemHandler("sales-report", &fakeStore{}, nil), "/api/v1/system/health")

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "csv", data["store"])
		assert.NotEmpty(t, data["go_version"])
	})

	t.Run("store unreachable", func(t *testing.T) {
		w := serveSystem(NewSystemHandler("sales-report", &fakeStore{err: errors.New("no such directory")}, nil), "/api/v1/system/health")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeServiceUnavailable, resp.Error.Code)
	})
}

func TestSystemHandler_Ping(t *testing.T) {
	w := serveSystem(NewSystemHandler("sales-report", &fakeStore{err: errors.New("down")}, nil), "/api/v1/system/ping")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "pong", data["message"])
	assert.Equal(t, "sales-report", data["service"])
}
