package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/salesreport/internal/domain/report"
	"github.com/erp/salesreport/internal/infrastructure/logger"
	"github.com/erp/salesreport/internal/interfaces/http/dto"
	"github.com/erp/salesreport/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// HandleError maps a report build failure to a response.
// Lookup failures are the data's fault and answer 422. Everything else is a
// configuration or store defect; it is logged and answers 500 without detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var lookupErr *report.LookupError
	switch {
	case errors.As(err, &lookupErr):
		h.Error(c, dto.ErrCodeLookupFailed, lookupErr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		logger.GetGinLogger(c).Warn("Report build timed out", zap.Error(err))
		h.Error(c, dto.ErrCodeTimeout, "Report took too long to build")
	default:
		logger.GetGinLogger(c).Error("Report build failed", zap.Error(err))
		h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
	}
}
