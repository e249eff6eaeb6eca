package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// notAnInteger is the message for a path id that is not a positive integer.
const notAnInteger = "Not a valid integer."

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response with data as the body
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandleError renders err in the error body shape. Domain errors keep
// their message; anything else is logged and reported as a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, middleware.TooLarge(tooLarge.Limit))
		return
	}

	body := dto.FromError(err)
	if body.StatusCode >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("request failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
	}
	c.AbortWithStatusJSON(body.StatusCode, body)
}

// bindJSON binds the request body into obj and converts binding failures
// into validation errors.
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) error {
	return middleware.TranslateBindError(c.ShouldBindJSON(obj))
}

// parseID reads a positive integer path parameter no larger than shared.MaxID.
func parseID(c *gin.Context, param string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 63)
	if err != nil || id == 0 {
		return 0, shared.NewFieldError(param, notAnInteger)
	}
	return id, nil
}
