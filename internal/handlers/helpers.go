package handlers

import (
	"errors"
	"net/http"

	"github.com/harimoradiya/rmspos/internal/middleware"
	"github.com/harimoradiya/rmspos/internal/services"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-gonic/gin"
)

// getActor pulls the resolved caller from the context. The auth middleware
// guarantees it is present on protected routes.
func getActor(c *gin.Context) (services.Actor, bool) {
	value, exists := c.Get(middleware.ContextActorKey)
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Caller identity not found in context", ""))
		return services.Actor{}, false
	}
	actor, ok := value.(services.Actor)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Invalid caller identity in context", ""))
		return services.Actor{}, false
	}
	return actor, true
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+name+" parameter", c.Param(name)))
		return 0, false
	}
	return id, true
}

// respondServiceError maps business errors to HTTP responses. Not-found
// style errors are checked per handler before falling through here, so
// this ladder covers the shared sentinels.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Input validation failed", err.Error()))
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Operation not permitted", err.Error()))
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrTableNotAvailable),
		errors.Is(err, services.ErrTableInUse),
		errors.Is(err, services.ErrAreaHasTables),
		errors.Is(err, services.ErrOrderNotEditable),
		errors.Is(err, services.ErrOrderNotBillable),
		errors.Is(err, services.ErrInvoiceExists),
		errors.Is(err, services.ErrInvoiceCancelled),
		errors.Is(err, services.ErrSubscriptionExists),
		errors.Is(err, services.ErrSubscriptionCancelled),
		errors.Is(err, services.ErrSplitMismatch):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Operation conflicts with current state", err.Error()))
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrKOTNotFound),
		errors.Is(err, services.ErrInvoiceNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrAreaNotFound),
		errors.Is(err, services.ErrMenuItemNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrChainNotFound),
		errors.Is(err, services.ErrOutletNotFound),
		errors.Is(err, services.ErrSubscriptionNotFound),
		errors.Is(err, services.ErrUserNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Resource not found", err.Error()))
	default:
		utils.LogError(err, "Unhandled service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "An unexpected error occurred", ""))
	}
}
