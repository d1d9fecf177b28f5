package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/harimoradiya/rmspos/internal/middleware"
	"github.com/harimoradiya/rmspos/internal/services"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandlers holds dependencies for authentication endpoints.
type AuthHandlers struct {
	authService services.AuthService
}

// NewAuthHandlers creates a new instance of AuthHandlers.
func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	resp, err := h.authService.Register(req)
	if err != nil {
		if errors.Is(err, services.ErrUsernameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Username or email already taken", ""))
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login. Accepts username+password or a
// six-digit terminal PIN.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid credentials", ""))
		case errors.Is(err, services.ErrUserInactive):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "User account is inactive", ""))
		default:
			respondServiceError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandlers) Me(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserIDKey)
	if userID == 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not found in context", ""))
		return
	}

	user, err := h.authService.GetUserProfile(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /api/v1/users. Optional role and is_active query
// filters.
func (h *AuthHandlers) ListUsers(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var filters services.UserListFilters
	if role := c.Query("role"); role != "" {
		filters.Role = &role
	}
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			utils.RespondValidationFailed(c, "is_active must be a boolean")
			return
		}
		filters.IsActive = &active
	}

	users, err := h.authService.ListUsers(actor, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// UpdateUser handles PUT /api/v1/users/:userId.
func (h *AuthHandlers) UpdateUser(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	user, err := h.authService.UpdateUser(actor, userID, req)
	if err != nil {
		if errors.Is(err, services.ErrUsernameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email or PIN already taken", ""))
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeactivateUser handles DELETE /api/v1/users/:userId.
func (h *AuthHandlers) DeactivateUser(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	if err := h.authService.DeactivateUser(actor, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deactivated"})
}
