package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/fitcoach/backend/internal/domain/shared"
	"github.com/fitcoach/backend/internal/infrastructure/logger"
	"github.com/fitcoach/backend/internal/interfaces/http/dto"
	"github.com/fitcoach/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

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

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeInternal, message)
}

// BindJSON decodes the body into dest and runs binding validation. It writes
// the error response itself and reports whether the handler may continue.
func (h *BaseHandler) BindJSON(c *gin.Context, dest any) bool {
	err := c.ShouldBindJSON(dest)
	if err == nil {
		return true
	}
	h.handleBindError(c, err)
	return false
}

// BindQuery binds query parameters into dest, like BindJSON
func (h *BaseHandler) BindQuery(c *gin.Context, dest any) bool {
	err := c.ShouldBindQuery(dest)
	if err == nil {
		return true
	}
	h.handleBindError(c, err)
	return false
}

func (h *BaseHandler) handleBindError(c *gin.Context, err error) {
	var maxBytes *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &maxBytes):
		h.Error(c, dto.ErrCodePayloadTooLarge, "Request body exceeds maximum allowed size")
	case errors.Is(err, io.EOF):
		h.Error(c, dto.ErrCodeInvalidJSON, "Request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		h.Error(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", getRequestID(c),
			[]dto.ValidationDetail{{Field: typeErr.Field, Message: "Must be of type " + typeErr.Type.String()}}))
	default:
		if details := middleware.ValidationDetails(err); details != nil {
			middleware.HandleValidationError(c, err)
			return
		}
		h.Error(c, dto.ErrCodeBadRequest, err.Error())
	}
}

// HandleError maps an application error to its HTTP response. Validation
// and upstream messages are passed through; anything unrecognised is logged
// and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		var details []dto.ValidationDetail
		if validationErr.Field != "" {
			details = []dto.ValidationDetail{{Field: validationErr.Field, Message: validationErr.Message}}
		}
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(validationErr.Error(), requestID, details))
		return
	}

	var upstreamErr *shared.UpstreamError
	if errors.As(err, &upstreamErr) {
		code := dto.NormalizeErrorCode(upstreamErr.ErrorCode())
		logger.GetGinLogger(c).Warn("Payment provider call failed",
			zap.String("provider", upstreamErr.Provider),
			zap.Int("provider_status", upstreamErr.StatusCode),
			zap.String("provider_code", upstreamErr.Code),
			zap.Error(err),
		)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, upstreamErr.Error(), requestID))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, domainErr.Message, requestID))
		return
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		h.Error(c, dto.ErrCodePayloadTooLarge, "Request body exceeds maximum allowed size")
		return
	}

	logger.GetGinLogger(c).Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.ErrCodeInternal,
		"An unexpected error occurred",
		requestID,
	))
}
