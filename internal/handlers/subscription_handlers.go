package handlers

import (
	"net/http"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/services"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SubscriptionHandlers holds dependencies for subscription endpoints.
type SubscriptionHandlers struct {
	subscriptionService services.SubscriptionService
}

// NewSubscriptionHandlers creates a new instance of SubscriptionHandlers.
func NewSubscriptionHandlers(subscriptionService services.SubscriptionService) *SubscriptionHandlers {
	return &SubscriptionHandlers{subscriptionService: subscriptionService}
}

// CreateSubscription handles POST /api/v1/subscriptions.
func (h *SubscriptionHandlers) CreateSubscription(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req services.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	subscription, err := h.subscriptionService.CreateSubscription(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subscription)
}

// ListSubscriptions handles GET /api/v1/subscriptions. Optional status
// and tier query filters.
func (h *SubscriptionHandlers) ListSubscriptions(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var filters models.SubscriptionFilters
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if tier := c.Query("tier"); tier != "" {
		filters.Tier = &tier
	}

	subscriptions, err := h.subscriptionService.ListSubscriptions(actor, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscriptions)
}

// GetMySubscription handles GET /api/v1/subscriptions/me.
func (h *SubscriptionHandlers) GetMySubscription(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	subscription, err := h.subscriptionService.GetMySubscription(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}

// UpdateSubscription handles PUT /api/v1/subscriptions/:subscriptionId.
func (h *SubscriptionHandlers) UpdateSubscription(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	subscriptionID, ok := parseIDParam(c, "subscriptionId")
	if !ok {
		return
	}

	var req services.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	subscription, err := h.subscriptionService.UpdateSubscription(actor, subscriptionID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}

// DeleteSubscription handles DELETE /api/v1/subscriptions/:subscriptionId.
func (h *SubscriptionHandlers) DeleteSubscription(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	subscriptionID, ok := parseIDParam(c, "subscriptionId")
	if !ok {
		return
	}

	if err := h.subscriptionService.DeleteSubscription(actor, subscriptionID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription deleted successfully"})
}

// RenewSubscription handles POST /api/v1/subscriptions/:subscriptionId/renew.
// The body is optional; an empty one renews for the default period.
func (h *SubscriptionHandlers) RenewSubscription(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	subscriptionID, ok := parseIDParam(c, "subscriptionId")
	if !ok {
		return
	}

	var req services.RenewSubscriptionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondValidationFailed(c, err.Error())
			return
		}
	}

	subscription, err := h.subscriptionService.RenewSubscription(actor, subscriptionID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}
