package handlers

import (
	"net/http"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/services"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandlers holds dependencies for order and kitchen ticket endpoints.
type OrderHandlers struct {
	orderService services.OrderService
	kotService   services.KOTService
}

// NewOrderHandlers creates a new instance of OrderHandlers.
func NewOrderHandlers(orderService services.OrderService, kotService services.KOTService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService, kotService: kotService}
}

// CreateOrder handles POST /api/v1/orders.
func (h *OrderHandlers) CreateOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.orderService.CreateOrder(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrders handles GET /api/v1/orders with filter query parameters.
func (h *OrderHandlers) GetOrders(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var filters models.OrderFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}

	orders, totalCount, err := h.orderService.GetOrders(actor, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	})
}

// GetOrder handles GET /api/v1/orders/:orderId.
func (h *OrderHandlers) GetOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := h.orderService.GetOrderByID(actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrderByToken handles GET /api/v1/orders/token/:tokenNumber.
func (h *OrderHandlers) GetOrderByToken(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	tokenNumber := c.Param("tokenNumber")
	if utils.IsEmpty(tokenNumber) {
		utils.RespondValidationFailed(c, "token number is required")
		return
	}

	order, err := h.orderService.GetOrderByToken(actor, tokenNumber)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles PATCH /api/v1/orders/:orderId/status.
func (h *OrderHandlers) UpdateOrderStatus(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.orderService.UpdateOrderStatus(actor, orderID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// AddItems handles POST /api/v1/orders/:orderId/items.
func (h *OrderHandlers) AddItems(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}
	var req struct {
		Items []services.OrderItemRequest `json:"items" binding:"required,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	order, err := h.orderService.AddItemsToOrder(actor, orderID, req.Items)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// --- Kitchen tickets ---

// ListKOTs handles GET /api/v1/kots?outlet_id=&status=.
func (h *OrderHandlers) ListKOTs(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var filters models.KOTFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}
	if filters.OutletID <= 0 {
		utils.RespondValidationFailed(c, "outlet_id is required")
		return
	}

	kots, err := h.kotService.ListKOTs(actor, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, kots)
}

// GetKOT handles GET /api/v1/kots/:kotId.
func (h *OrderHandlers) GetKOT(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	kotID, ok := parseIDParam(c, "kotId")
	if !ok {
		return
	}
	kot, err := h.kotService.GetKOTByID(actor, kotID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, kot)
}

// UpdateKOTStatus handles PATCH /api/v1/kots/:kotId/status.
func (h *OrderHandlers) UpdateKOTStatus(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	kotID, ok := parseIDParam(c, "kotId")
	if !ok {
		return
	}
	var req services.UpdateKOTStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	kot, err := h.kotService.UpdateKOTStatus(actor, kotID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, kot)
}
