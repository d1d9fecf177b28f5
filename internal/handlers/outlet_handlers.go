package handlers

import (
	"net/http"

	"github.com/harimoradiya/rmspos/internal/services"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OutletHandlers holds dependencies for chain and outlet endpoints.
type OutletHandlers struct {
	outletService services.OutletService
}

// NewOutletHandlers creates a new instance of OutletHandlers.
func NewOutletHandlers(outletService services.OutletService) *OutletHandlers {
	return &OutletHandlers{outletService: outletService}
}

// CreateChain handles POST /api/v1/chains.
func (h *OutletHandlers) CreateChain(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req services.CreateChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	chain, err := h.outletService.CreateChain(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chain)
}

// GetMyChains handles GET /api/v1/chains.
func (h *OutletHandlers) GetMyChains(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	chains, err := h.outletService.GetMyChains(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, chains)
}

// DeleteChain handles DELETE /api/v1/chains/:chainId.
func (h *OutletHandlers) DeleteChain(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	chainID, ok := parseIDParam(c, "chainId")
	if !ok {
		return
	}
	if err := h.outletService.DeleteChain(actor, chainID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chain deleted successfully"})
}

// CreateOutlet handles POST /api/v1/outlets.
func (h *OutletHandlers) CreateOutlet(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req services.CreateOutletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	outlet, err := h.outletService.CreateOutlet(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, outlet)
}

// GetOutlet handles GET /api/v1/outlets/:outletId.
func (h *OutletHandlers) GetOutlet(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	outletID, ok := parseIDParam(c, "outletId")
	if !ok {
		return
	}
	outlet, err := h.outletService.GetOutletByID(actor, outletID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outlet)
}

// GetOutletsByChain handles GET /api/v1/chains/:chainId/outlets.
func (h *OutletHandlers) GetOutletsByChain(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	chainID, ok := parseIDParam(c, "chainId")
	if !ok {
		return
	}
	outlets, err := h.outletService.GetOutletsByChain(actor, chainID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outlets)
}

// UpdateOutlet handles PUT /api/v1/outlets/:outletId.
func (h *OutletHandlers) UpdateOutlet(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	outletID, ok := parseIDParam(c, "outletId")
	if !ok {
		return
	}
	var req services.UpdateOutletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	outlet, err := h.outletService.UpdateOutlet(actor, outletID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, outlet)
}
