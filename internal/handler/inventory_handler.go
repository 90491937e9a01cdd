package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuel-nexus/service-backoffice/internal/application"
	"github.com/fuel-nexus/service-backoffice/internal/auth"
	"github.com/fuel-nexus/service-backoffice/internal/httpx"
	"github.com/fuel-nexus/service-backoffice/internal/middleware"
)

// InventoryHandler handles HTTP requests for inventory operations.
type InventoryHandler struct {
	service *application.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(service *application.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes registers all inventory routes on the given router group.
// The whole surface is staff-only; customers never see the ledger.
func (h *InventoryHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	staffOnly := middleware.RequireRole(auth.RoleAdmin, auth.RoleOperator)

	inventory := r.Group("/api/v1/inventory")
	inventory.Use(authMW, staffOnly)
	{
		inventory.POST("", h.CreateInventory)
		inventory.GET("", h.ListInventory)
		inventory.GET("/low-stock", h.ListLowStock)
		inventory.GET("/batch/:batchNumber", h.GetByBatchNumber)
		inventory.GET("/fuel-type/:fuelType", h.GetByFuelType)
		inventory.GET("/:id", h.GetInventory)
		inventory.GET("/:id/low-stock", h.CheckLowStock)
		inventory.PUT("/:id", h.UpdateInventory)
		inventory.POST("/:id/restock", h.RestockInventory)
	}
}

// CreateInventory handles POST /api/v1/inventory.
func (h *InventoryHandler) CreateInventory(c *gin.Context) {
	var req application.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateInventory(c.Request.Context(), req)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Created(c, result)
}

// ListInventory handles GET /api/v1/inventory.
func (h *InventoryHandler) ListInventory(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListInventory(c.Request.Context(), page, limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// ListLowStock handles GET /api/v1/inventory/low-stock.
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	result, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// GetInventory handles GET /api/v1/inventory/:id.
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	inventoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid inventory ID")
		return
	}

	result, err := h.service.GetInventory(c.Request.Context(), inventoryID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// CheckLowStock handles GET /api/v1/inventory/:id/low-stock. An optional
// threshold query parameter overrides the configured threshold for this check.
func (h *InventoryHandler) CheckLowStock(c *gin.Context) {
	inventoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid inventory ID")
		return
	}

	var threshold float64
	if raw := c.Query("threshold"); raw != "" {
		threshold, err = strconv.ParseFloat(raw, 64)
		if err != nil || threshold <= 0 {
			httpx.BadRequest(c, "threshold must be a positive number")
			return
		}
	}

	result, err := h.service.CheckLowStock(c.Request.Context(), inventoryID, threshold)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// GetByBatchNumber handles GET /api/v1/inventory/batch/:batchNumber.
func (h *InventoryHandler) GetByBatchNumber(c *gin.Context) {
	result, err := h.service.GetInventoryByBatchNumber(c.Request.Context(), c.Param("batchNumber"))
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// GetByFuelType handles GET /api/v1/inventory/fuel-type/:fuelType.
func (h *InventoryHandler) GetByFuelType(c *gin.Context) {
	result, err := h.service.GetInventoryByFuelType(c.Request.Context(), c.Param("fuelType"))
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// UpdateInventory handles PUT /api/v1/inventory/:id.
func (h *InventoryHandler) UpdateInventory(c *gin.Context) {
	inventoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid inventory ID")
		return
	}

	var req application.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateInventory(c.Request.Context(), inventoryID, req)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// RestockInventory handles POST /api/v1/inventory/:id/restock.
func (h *InventoryHandler) RestockInventory(c *gin.Context) {
	inventoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid inventory ID")
		return
	}

	var req application.RestockInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RestockInventory(c.Request.Context(), inventoryID, req)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}
