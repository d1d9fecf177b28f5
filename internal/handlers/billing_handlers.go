package handlers

import (
	"net/http"

	"github.com/harimoradiya/rmspos/internal/services"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BillingHandlers holds dependencies for invoicing endpoints.
type BillingHandlers struct {
	billingService services.BillingService
}

// NewBillingHandlers creates a new instance of BillingHandlers.
func NewBillingHandlers(billingService services.BillingService) *BillingHandlers {
	return &BillingHandlers{billingService: billingService}
}

// CreateInvoice handles POST /api/v1/invoices.
func (h *BillingHandlers) CreateInvoice(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req services.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	invoice, err := h.billingService.CreateInvoice(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// CompletePayment handles POST /api/v1/invoices/:invoiceId/complete.
// Completing an already-settled invoice returns it unchanged.
func (h *BillingHandlers) CompletePayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	invoiceID, ok := parseIDParam(c, "invoiceId")
	if !ok {
		return
	}

	invoice, err := h.billingService.CompletePayment(actor, invoiceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// SplitBill handles POST /api/v1/invoices/split.
func (h *BillingHandlers) SplitBill(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	var req services.SplitBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	invoices, err := h.billingService.SplitBill(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoices)
}

// GetInvoice handles GET /api/v1/invoices/:invoiceId.
func (h *BillingHandlers) GetInvoice(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	invoiceID, ok := parseIDParam(c, "invoiceId")
	if !ok {
		return
	}

	invoice, err := h.billingService.GetInvoiceByID(actor, invoiceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// GetInvoicesByOrder handles GET /api/v1/orders/:orderId/invoices.
func (h *BillingHandlers) GetInvoicesByOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	invoices, err := h.billingService.GetInvoicesByOrder(actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}
