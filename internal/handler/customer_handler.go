package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuel-nexus/service-backoffice/internal/application"
	"github.com/fuel-nexus/service-backoffice/internal/auth"
	"github.com/fuel-nexus/service-backoffice/internal/httpx"
	"github.com/fuel-nexus/service-backoffice/internal/middleware"
)

// CustomerHandler handles HTTP requests for customer operations.
type CustomerHandler struct {
	service *application.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(service *application.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// RegisterRoutes registers all customer routes on the given router group.
func (h *CustomerHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	staffOnly := middleware.RequireRole(auth.RoleAdmin, auth.RoleOperator)

	customers := r.Group("/api/v1/customers")
	customers.Use(authMW)
	{
		customers.POST("", staffOnly, h.CreateCustomer)
		customers.GET("", staffOnly, h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", middleware.RequireRole(auth.RoleAdmin), h.DeactivateCustomer)
	}
}

// CreateCustomer handles POST /api/v1/customers.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req application.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Created(c, result)
}

// ListCustomers handles GET /api/v1/customers.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListCustomers(c.Request.Context(), page, limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetCustomer handles GET /api/v1/customers/:id.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid customer ID")
		return
	}

	result, err := h.service.GetCustomer(c.Request.Context(), customerID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// UpdateCustomer handles PUT /api/v1/customers/:id.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid customer ID")
		return
	}

	var req application.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateCustomer(c.Request.Context(), customerID, req)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// DeactivateCustomer handles DELETE /api/v1/customers/:id.
func (h *CustomerHandler) DeactivateCustomer(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid customer ID")
		return
	}

	if err := h.service.DeactivateCustomer(c.Request.Context(), customerID); err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.NoContent(c)
}
