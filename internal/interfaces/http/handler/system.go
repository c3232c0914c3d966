package handler

import (
	"context"
	"runtime"
	"time"

	"github.com/erp/salesreport/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StoreChecker reports whether the backing store is reachable
type StoreChecker interface {
	Check(ctx context.Context) error
	Driver() string
}

// SystemHandler serves liveness and health endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	store     StoreChecker
	startTime time.Time
	logger    *zap.Logger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name string, store StoreChecker, logger *zap.Logger) *SystemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemHandler{
		name:      name,
		store:     store,
		startTime: time.Now(),
		logger:    logger,
	}
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Store     string `json:"store"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports store reachability. It reads the backend directly, never the cache.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Check(ctx); err != nil {
		h.logger.Warn("Store health check failed", zap.String("driver", h.store.Driver()), zap.Error(err))
		h.Error(c, dto.ErrCodeServiceUnavailable, "backing store unreachable")
		return
	}

	h.Success(c, HealthResponse{
		Status:    "ok",
		Store:     h.store.Driver(),
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// Ping answers without touching the store
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Service:   h.name,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// RegisterRoutes mounts the system endpoints under the versioned API group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/ping", h.Ping)
	rg.GET("/system/health", h.Health)
}
