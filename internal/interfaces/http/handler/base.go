package handler

import (
	"errors"
	"net/http"

	"github.com/pharmacy/backend/internal/interfaces/http/dto"
	"github.com/pharmacy/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// userID extracts the authenticated user's ID from the context
func userID(c *gin.Context) (uuid.UUID, error) {
	id, ok := middleware.UserIDFrom(c)
	if !ok {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return id, nil
}

// pathID parses the :id path parameter as a UUID
func pathID(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, offset, limit, count int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, offset, limit, count))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, message))
}

// HandleError maps any error to its response, deriving the status from the
// domain error code
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	resp, status := dto.FromError(err)
	c.JSON(status, resp)
}
