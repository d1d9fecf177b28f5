package handlers

import (
	"io"
	"net/http"

	"github.com/harimoradiya/rmspos/internal/notifications"
	"github.com/harimoradiya/rmspos/internal/repositories"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-gonic/gin"
)

// NotificationHandlers exposes the outlet event hub as a server-sent
// event stream.
type NotificationHandlers struct {
	hub        *notifications.Hub
	outletRepo repositories.OutletRepository
}

// NewNotificationHandlers creates a new instance of NotificationHandlers.
func NewNotificationHandlers(hub *notifications.Hub, outletRepo repositories.OutletRepository) *NotificationHandlers {
	return &NotificationHandlers{hub: hub, outletRepo: outletRepo}
}

// Stream handles GET /api/v1/notifications/stream?outlet_id=. It holds the
// connection open and forwards every event broadcast on the outlet topic
// until the client disconnects or the hub shuts down. Delivery is
// best-effort; clients reconcile through the order and ticket read APIs.
func (h *NotificationHandlers) Stream(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	outletID, err := utils.StrToInt64(c.Query("outlet_id"))
	if err != nil || outletID <= 0 {
		utils.RespondValidationFailed(c, "outlet_id query parameter is required")
		return
	}
	if !actor.CanAccessOutlet(outletID) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Outlet is outside caller scope", ""))
		return
	}
	exists, err := h.outletRepo.OutletExists(outletID)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Could not verify outlet", ""))
		return
	}
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Outlet not found", ""))
		return
	}

	sub := h.hub.Subscribe(outletID)
	defer h.hub.Unsubscribe(sub)

	utils.LogInfo("Notification subscriber connected", map[string]interface{}{
		"outlet_id": outletID,
		"user_id":   actor.UserID,
	})

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, open := <-sub.Events():
			if !open {
				return false
			}
			c.SSEvent(event.Type, event)
			return true
		}
	})
}
