package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	reportapp "github.com/erp/salesreport/internal/application/report"
	"github.com/erp/salesreport/internal/domain/report"
	"github.com/gin-gonic/gin"
)

// DailyReportService builds the wire report for a date
type DailyReportService interface {
	GetDailyReport(ctx context.Context, date string) (*reportapp.DailyReportResponse, error)
}

// ReportQuery is the query string of the report endpoint
type ReportQuery struct {
	Date string `form:"date" binding:"required,report_date"`
}

// ReportHandler serves the daily report
type ReportHandler struct {
	BaseHandler
	service DailyReportService
	timeout time.Duration
}

// ReportHandlerOption configures a ReportHandler
type ReportHandlerOption func(*ReportHandler)

// WithReportTimeout bounds each report build. Zero means no bound.
func WithReportTimeout(timeout time.Duration) ReportHandlerOption {
	return func(h *ReportHandler) {
		h.timeout = timeout
	}
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service DailyReportService, opts ...ReportHandlerOption) *ReportHandler {
	h := &ReportHandler{service: service}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetReport godoc
// @Summary      Daily sales and commission report
// @Description  Aggregates the orders, discounts and commissions of one day.
// @Description  An invalid or missing date answers 200 text/plain "Input date is not valid".
// @Tags         report
// @Produce      json
// @Param        date query string true "Report date (YYYY-MM-DD)"
// @Success      200 {object} reportapp.DailyReportResponse
// @Failure      422 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /report [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	var q ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.invalidDate(c)
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	resp, err := h.service.GetDailyReport(ctx, q.Date)
	if err != nil {
		if errors.Is(err, report.ErrInvalidDate) {
			h.invalidDate(c)
			return
		}
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// invalidDate answers with the plain text body clients test for
func (h *ReportHandler) invalidDate(c *gin.Context) {
	c.String(http.StatusOK, report.ErrInvalidDate.Message)
}

// RegisterRoutes mounts the report under the versioned API group
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/report", h.GetReport)
}
