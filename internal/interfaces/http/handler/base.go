package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bartab/backend/internal/domain/catalog"
	"github.com/bartab/backend/internal/domain/shared"
	"github.com/bartab/backend/internal/infrastructure/logger"
	"github.com/bartab/backend/internal/interfaces/http/dto"
)

// BaseHandler provides response helpers shared by every handler
type BaseHandler struct{}

// Success sends a 200 response with the given data
func (h *BaseHandler) Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response with the given data
func (h *BaseHandler) Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated sends a 200 response with a paginated list and meta block
func Paginated[T any](c *gin.Context, page *shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(page))
}

// BadRequest sends a 400 response for request shape problems caught
// before the application layer
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponse(dto.ErrCodeInvalidInput, message))
}

// HandleError translates an application error into an HTTP response
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var pinErr *catalog.PinViolation
	if errors.As(err, &pinErr) {
		c.JSON(dto.GetHTTPStatus(pinErr.Code()),
			dto.NewErrorResponse(pinErr.Code(), pinErr.Error()))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code),
			dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	var invariantErr *shared.InvariantViolation
	if errors.As(err, &invariantErr) {
		logger.L(c.Request.Context()).Error("invariant violation",
			zap.String("op", invariantErr.Op),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError,
			dto.NewErrorResponse(dto.ErrCodeInternal, "internal server error"))
		return
	}

	logger.L(c.Request.Context()).Error("unhandled error", zap.Error(err))
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternal, "internal server error"))
}
