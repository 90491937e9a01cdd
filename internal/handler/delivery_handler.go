package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuel-nexus/service-backoffice/internal/application"
	"github.com/fuel-nexus/service-backoffice/internal/auth"
	"github.com/fuel-nexus/service-backoffice/internal/httpx"
	"github.com/fuel-nexus/service-backoffice/internal/middleware"
)

// DeliveryHandler handles HTTP requests for delivery operations.
type DeliveryHandler struct {
	service *application.DeliveryService
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(service *application.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

// RegisterRoutes registers all delivery routes on the given router group.
func (h *DeliveryHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	staffOnly := middleware.RequireRole(auth.RoleAdmin, auth.RoleOperator)

	deliveries := r.Group("/api/v1/deliveries")
	deliveries.Use(authMW)
	{
		deliveries.POST("", staffOnly, h.CreateDelivery)
		deliveries.GET("", staffOnly, h.ListDeliveries)
		deliveries.GET("/:id", h.GetDelivery)
		deliveries.GET("/:id/track", h.TrackDelivery)
		deliveries.POST("/:id/assign", staffOnly, h.AssignDelivery)
		deliveries.PATCH("/:id/status", staffOnly, h.UpdateDeliveryStatus)
		deliveries.POST("/:id/cancel", staffOnly, h.CancelDelivery)
		deliveries.GET("/booking/:bookingId", h.GetBookingDeliveries)
	}
}

// CreateDelivery handles POST /api/v1/deliveries.
func (h *DeliveryHandler) CreateDelivery(c *gin.Context) {
	var req application.CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateDelivery(c.Request.Context(), req)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Created(c, result)
}

// ListDeliveries handles GET /api/v1/deliveries.
func (h *DeliveryHandler) ListDeliveries(c *gin.Context) {
	page, limit := parsePagination(c)

	result, err := h.service.ListDeliveries(c.Request.Context(), page, limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetDelivery handles GET /api/v1/deliveries/:id.
func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid delivery ID")
		return
	}

	result, err := h.service.GetDelivery(c.Request.Context(), deliveryID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// TrackDelivery handles GET /api/v1/deliveries/:id/track.
func (h *DeliveryHandler) TrackDelivery(c *gin.Context) {
	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid delivery ID")
		return
	}

	result, err := h.service.TrackDelivery(c.Request.Context(), deliveryID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// AssignDelivery handles POST /api/v1/deliveries/:id/assign.
func (h *DeliveryHandler) AssignDelivery(c *gin.Context) {
	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid delivery ID")
		return
	}

	var req application.AssignDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AssignDelivery(c.Request.Context(), deliveryID, req)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// UpdateDeliveryStatus handles PATCH /api/v1/deliveries/:id/status.
func (h *DeliveryHandler) UpdateDeliveryStatus(c *gin.Context) {
	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid delivery ID")
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateDeliveryStatus(c.Request.Context(), deliveryID, body.Status)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// CancelDelivery handles POST /api/v1/deliveries/:id/cancel.
func (h *DeliveryHandler) CancelDelivery(c *gin.Context) {
	deliveryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpx.BadRequest(c, "invalid delivery ID")
		return
	}

	result, err := h.service.CancelDelivery(c.Request.Context(), deliveryID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}

// GetBookingDeliveries handles GET /api/v1/deliveries/booking/:bookingId.
func (h *DeliveryHandler) GetBookingDeliveries(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("bookingId"))
	if err != nil {
		httpx.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.service.GetBookingDeliveries(c.Request.Context(), bookingID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	httpx.Success(c, result)
}
