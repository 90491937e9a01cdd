package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuel-nexus/service-backoffice/internal/application"
	"github.com/fuel-nexus/service-backoffice/internal/auth"
	"github.com/fuel-nexus/service-backoffice/internal/httpx"
	"github.com/fuel-nexus/service-backoffice/internal/middleware"
)

// ProductHandler handles HTTP requests for product catalog operations.
type ProductHandler struct {
	service *application.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *application.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers all product routes on the given router group.
// Reads are open to any authenticated caller; writes are admin-only.
func (h *ProductHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	products := r.Group("/api/v1/products")
	products.Use(authMW)
	{
		products.POST("", adminOnly, h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", adminOnly, h.UpdateProduct)
		products.DELETE("/:id", adminOnly, h.DeactivateProduct)
	}
}

// CreateProduct handles POST /api/v1/products.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req application.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateProduct(c.Request.Context(), req)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Created(c, result)
}

// ListProducts handles GET /api/v1/products.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListProducts(c.Request.Context(), page, limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetProduct handles GET /api/v1/products/:id.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid product ID")
		return
	}

	result, err := h.service.GetProduct(c.Request.Context(), productID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// UpdateProduct handles PUT /api/v1/products/:id.
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid product ID")
		return
	}

	var req application.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateProduct(c.Request.Context(), productID, req)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// DeactivateProduct handles DELETE /api/v1/products/:id.
func (h *ProductHandler) DeactivateProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid product ID")
		return
	}

	if err := h.service.DeactivateProduct(c.Request.Context(), productID); err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.NoContent(c)
}
