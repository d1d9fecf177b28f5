package handlers

import (
	"net/http"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/services"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MenuHandlers holds dependencies for menu catalog endpoints.
type MenuHandlers struct {
	menuService services.MenuService
}

// NewMenuHandlers creates a new instance of MenuHandlers.
func NewMenuHandlers(menuService services.MenuService) *MenuHandlers {
	return &MenuHandlers{menuService: menuService}
}

// CreateCategory handles POST /api/v1/menu/categories.
func (h *MenuHandlers) CreateCategory(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	category, err := h.menuService.CreateCategory(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GetCategories handles GET /api/v1/menu/categories?chain_id=&outlet_id=.
func (h *MenuHandlers) GetCategories(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var chainID, outletID *int64
	if raw := c.Query("chain_id"); raw != "" {
		id, err := utils.StrToInt64(raw)
		if err != nil {
			utils.RespondValidationFailed(c, "invalid chain_id")
			return
		}
		chainID = &id
	}
	if raw := c.Query("outlet_id"); raw != "" {
		id, err := utils.StrToInt64(raw)
		if err != nil {
			utils.RespondValidationFailed(c, "invalid outlet_id")
			return
		}
		outletID = &id
	}

	categories, err := h.menuService.GetCategories(actor, chainID, outletID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// UpdateCategory handles PUT /api/v1/menu/categories/:categoryId.
func (h *MenuHandlers) UpdateCategory(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	category, err := h.menuService.UpdateCategory(actor, categoryID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/v1/menu/categories/:categoryId.
func (h *MenuHandlers) DeleteCategory(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}
	if err := h.menuService.DeleteCategory(actor, categoryID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}

// CreateItem handles POST /api/v1/menu/items.
func (h *MenuHandlers) CreateItem(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req services.CreateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	item, err := h.menuService.CreateItem(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// GetItems handles GET /api/v1/menu/items with filter query parameters.
func (h *MenuHandlers) GetItems(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var filters models.MenuItemFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	items, totalCount, err := h.menuService.GetItems(actor, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	})
}

// UpdateItem handles PUT /api/v1/menu/items/:itemId.
func (h *MenuHandlers) UpdateItem(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	var req services.UpdateMenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	item, err := h.menuService.UpdateItem(actor, itemID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem handles DELETE /api/v1/menu/items/:itemId.
func (h *MenuHandlers) DeleteItem(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	if err := h.menuService.DeleteItem(actor, itemID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
