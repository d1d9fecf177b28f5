package handlers

import (
	"net/http"

	"github.com/harimoradiya/rmspos/internal/services"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TableHandlers holds dependencies for area and table endpoints.
type TableHandlers struct {
	tableService services.TableService
}

// NewTableHandlers creates a new instance of TableHandlers.
func NewTableHandlers(tableService services.TableService) *TableHandlers {
	return &TableHandlers{tableService: tableService}
}

// CreateArea handles POST /api/v1/areas.
func (h *TableHandlers) CreateArea(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req services.CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	area, err := h.tableService.CreateArea(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, area)
}

// GetAreas handles GET /api/v1/outlets/:outletId/areas.
func (h *TableHandlers) GetAreas(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	outletID, ok := parseIDParam(c, "outletId")
	if !ok {
		return
	}
	areas, err := h.tableService.GetAreasByOutlet(actor, outletID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, areas)
}

// UpdateArea handles PUT /api/v1/areas/:areaId.
func (h *TableHandlers) UpdateArea(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	areaID, ok := parseIDParam(c, "areaId")
	if !ok {
		return
	}
	var req services.UpdateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	area, err := h.tableService.UpdateArea(actor, areaID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, area)
}

// DeleteArea handles DELETE /api/v1/areas/:areaId. Pass cascade=true to
// delete an area together with its tables; otherwise a populated area is
// deactivated and the request is rejected.
func (h *TableHandlers) DeleteArea(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	areaID, ok := parseIDParam(c, "areaId")
	if !ok {
		return
	}
	cascade := c.Query("cascade") == "true"

	if err := h.tableService.DeleteArea(actor, areaID, cascade); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Area deleted successfully"})
}

// CreateTable handles POST /api/v1/tables.
func (h *TableHandlers) CreateTable(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req services.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	table, err := h.tableService.CreateTable(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

// GetTable handles GET /api/v1/tables/:tableId.
func (h *TableHandlers) GetTable(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	tableID, ok := parseIDParam(c, "tableId")
	if !ok {
		return
	}
	table, err := h.tableService.GetTableByID(actor, tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// GetTables handles GET /api/v1/outlets/:outletId/tables.
func (h *TableHandlers) GetTables(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	outletID, ok := parseIDParam(c, "outletId")
	if !ok {
		return
	}
	tables, err := h.tableService.GetTablesByOutlet(actor, outletID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tables)
}

// UpdateTable handles PUT /api/v1/tables/:tableId.
func (h *TableHandlers) UpdateTable(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	tableID, ok := parseIDParam(c, "tableId")
	if !ok {
		return
	}
	var req services.UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	table, err := h.tableService.UpdateTable(actor, tableID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// UpdateTableStatus handles PATCH /api/v1/tables/:tableId/status. This is
// a management action; it never overrides a table held by an active order.
func (h *TableHandlers) UpdateTableStatus(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	tableID, ok := parseIDParam(c, "tableId")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	table, err := h.tableService.UpdateTableStatus(actor, tableID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// DeleteTable handles DELETE /api/v1/tables/:tableId.
func (h *TableHandlers) DeleteTable(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	tableID, ok := parseIDParam(c, "tableId")
	if !ok {
		return
	}
	if err := h.tableService.DeleteTable(actor, tableID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted successfully"})
}
