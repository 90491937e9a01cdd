package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fuel-nexus/service-backoffice/internal/domain"
)

// envelope is the standard JSON response shape.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// paginatedEnvelope wraps list responses with pagination metadata.
type paginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// NoContent writes a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paginated writes a 200 response with pagination metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, paginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{Success: false, Error: message})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, envelope{Success: false, Error: message})
}

// Error maps a domain error to its HTTP status. Unrecognized errors are
// reported as 500 without leaking internals to the client.
func Error(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, envelope{Success: false, Error: err.Error()})
	case domain.IsInsufficientInventory(err):
		c.JSON(http.StatusConflict, envelope{Success: false, Error: err.Error()})
	case domain.IsInvalidState(err):
		c.JSON(http.StatusBadRequest, envelope{Success: false, Error: err.Error()})
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, envelope{Success: false, Error: err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, envelope{Success: false, Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, envelope{Success: false, Error: "internal server error"})
	}
}
