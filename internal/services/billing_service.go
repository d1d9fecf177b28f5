package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/notifications"
	"github.com/harimoradiya/rmspos/internal/repositories"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"github.com/google/uuid"
)

// Billing errors.
var (
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrInvoiceExists    = errors.New("order already has an invoice")
	ErrOrderNotBillable = errors.New("order is not ready for billing")
	ErrInvoiceCancelled = errors.New("invoice is cancelled")
	ErrSplitMismatch    = errors.New("split does not cover the order")
)

// PaymentRequest is one requested settlement leg of an invoice.
type PaymentRequest struct {
	Method string  `json:"method" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CreateInvoiceRequest defines the expected JSON body for invoice creation.
type CreateInvoiceRequest struct {
	OrderID  int64            `json:"order_id" binding:"required"`
	Discount float64          `json:"discount"`
	Tax      float64          `json:"tax"`
	Payments []PaymentRequest `json:"payments" binding:"required,dive"`
}

// SplitRequest is one requested share of a split bill: either a set of
// order item ids or a fixed amount, depending on the split type.
type SplitRequest struct {
	ItemIDs []int64  `json:"item_ids"`
	Amount  *float64 `json:"amount"`
}

// SplitBillRequest defines the expected JSON body for splitting a bill.
type SplitBillRequest struct {
	OrderID  int64          `json:"order_id" binding:"required"`
	SplitBy  string         `json:"split_by" binding:"required"`
	Splits   []SplitRequest `json:"splits" binding:"required"`
	Discount float64        `json:"discount"`
	Tax      float64        `json:"tax"`
}

// BillingService defines the interface for invoicing and payments.
type BillingService interface {
	CreateInvoice(actor Actor, req CreateInvoiceRequest) (*models.Invoice, error)
	CompletePayment(actor Actor, invoiceID int64) (*models.Invoice, error)
	SplitBill(actor Actor, req SplitBillRequest) ([]models.Invoice, error)
	GetInvoiceByID(actor Actor, invoiceID int64) (*models.Invoice, error)
	GetInvoicesByOrder(actor Actor, orderID int64) ([]models.Invoice, error)
}

type billingService struct {
	billingRepo repositories.BillingRepository
	orderRepo   repositories.OrderRepository
	tableRepo   repositories.TableRepository
	notifier    Notifier
	db          *sql.DB
}

// NewBillingService creates a new instance of BillingService.
func NewBillingService(
	billingRepo repositories.BillingRepository,
	orderRepo repositories.OrderRepository,
	tableRepo repositories.TableRepository,
	notifier Notifier,
	db *sql.DB,
) BillingService {
	return &billingService{
		billingRepo: billingRepo,
		orderRepo:   orderRepo,
		tableRepo:   tableRepo,
		notifier:    notifier,
		db:          db,
	}
}

// CreateInvoice bills a ready or completed order. At most one non-split
// invoice exists per order; the requested payment legs must add up to the
// invoice total and each becomes a pending Payment row.
func (s *billingService) CreateInvoice(actor Actor, req CreateInvoiceRequest) (*models.Invoice, error) {
	if err := validateCharges(req.Discount, req.Tax); err != nil {
		return nil, err
	}
	if len(req.Payments) == 0 {
		return nil, fmt.Errorf("%w: at least one payment method is required", ErrValidation)
	}
	for _, p := range req.Payments {
		if !models.IsValidPaymentMethod(p.Method) {
			return nil, fmt.Errorf("%w: invalid payment method %q", ErrValidation, p.Method)
		}
		if p.Amount <= 0 {
			return nil, fmt.Errorf("%w: payment amounts must be positive", ErrValidation)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.billableOrder(tx, actor, req.OrderID)
	if err != nil {
		return nil, err
	}

	total := invoiceTotal(order.TotalAmount, req.Discount, req.Tax)
	if total < 0 {
		return nil, fmt.Errorf("%w: discount exceeds the order total", ErrValidation)
	}

	legAmounts := make([]float64, len(req.Payments))
	for i, p := range req.Payments {
		legAmounts[i] = p.Amount
	}
	if !utils.MoneyEquals(utils.SumMoney(legAmounts), total) {
		return nil, fmt.Errorf("%w: payment legs must add up to the invoice total %.2f", ErrValidation, total)
	}

	invoice := &models.Invoice{
		OrderID:     order.ID,
		Subtotal:    order.TotalAmount,
		Discount:    utils.RoundMoney(req.Discount),
		Tax:         utils.RoundMoney(req.Tax),
		TotalAmount: total,
		Status:      string(models.InvoiceStatusPending),
		CreatedByID: &actor.UserID,
	}
	if err := s.insertInvoice(tx, order.OutletID, invoice); err != nil {
		return nil, err
	}

	for _, p := range req.Payments {
		ref := uuid.NewString()
		payment := &models.Payment{
			InvoiceID:     invoice.ID,
			Amount:        utils.RoundMoney(p.Amount),
			Method:        p.Method,
			Status:        string(models.PaymentStatusPending),
			TransactionID: &ref,
		}
		if _, err := s.billingRepo.CreatePayment(tx, payment); err != nil {
			return nil, fmt.Errorf("creating payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return s.loadInvoice(invoice.ID)
}

// CompletePayment settles an invoice: payments and invoice become
// completed, the order is completed if it was not yet, and a dine-in
// table is released. Completing an already-completed invoice is a no-op
// that emits nothing, so a retried settlement never double-fires.
func (s *billingService) CompletePayment(actor Actor, invoiceID int64) (*models.Invoice, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	invoice, err := s.billingRepo.GetInvoiceByIDForUpdate(tx, invoiceID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("locking invoice: %w", err)
	}

	order, err := s.orderRepo.GetOrderByIDForUpdate(tx, invoice.OrderID)
	if err != nil {
		return nil, fmt.Errorf("locking order: %w", err)
	}
	if !actor.CanAccessOutlet(order.OutletID) {
		return nil, ErrInvoiceNotFound
	}

	switch models.InvoiceStatus(invoice.Status) {
	case models.InvoiceStatusCompleted:
		return s.loadInvoice(invoiceID)
	case models.InvoiceStatusCancelled:
		return nil, ErrInvoiceCancelled
	}

	now := time.Now()
	if err := s.billingRepo.UpdatePaymentsStatusByInvoice(tx, invoiceID, string(models.PaymentStatusCompleted), now); err != nil {
		return nil, fmt.Errorf("completing payments: %w", err)
	}
	if err := s.billingRepo.UpdateInvoiceStatus(tx, invoiceID, string(models.InvoiceStatusCompleted), now); err != nil {
		return nil, fmt.Errorf("completing invoice: %w", err)
	}

	orderCompleted := false
	if models.OrderStatus(order.Status) != models.OrderStatusCompleted {
		if err := s.orderRepo.UpdateOrderStatus(tx, order.ID, string(models.OrderStatusCompleted), now); err != nil {
			return nil, fmt.Errorf("completing order: %w", err)
		}
		orderCompleted = true
		if order.TableID != nil {
			if err := s.tableRepo.UpdateTableStatus(tx, *order.TableID, string(models.TableStatusAvailable), now); err != nil {
				return nil, fmt.Errorf("releasing table: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	if s.notifier != nil {
		event := notifications.NewEvent(notifications.EventPaymentCompleted, order.OutletID)
		event.OrderID = order.ID
		event.InvoiceID = invoice.ID
		event.Status = string(models.InvoiceStatusCompleted)
		s.notifier.Broadcast(order.OutletID, event)

		if orderCompleted {
			orderEvent := notifications.NewEvent(notifications.EventOrderStatusUpdate, order.OutletID)
			orderEvent.OrderID = order.ID
			orderEvent.Status = string(models.OrderStatusCompleted)
			s.notifier.Broadcast(order.OutletID, orderEvent)
		}
	}
	return s.loadInvoice(invoiceID)
}

// SplitBill carves one order into several invoices, by item sets or by
// fixed amounts, all in one transaction.
func (s *billingService) SplitBill(actor Actor, req SplitBillRequest) ([]models.Invoice, error) {
	if !models.IsValidSplitType(req.SplitBy) {
		return nil, fmt.Errorf("%w: invalid split type %q", ErrValidation, req.SplitBy)
	}
	if len(req.Splits) < 2 {
		return nil, fmt.Errorf("%w: a split needs at least two parts", ErrValidation)
	}
	if err := validateCharges(req.Discount, req.Tax); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.billableOrder(tx, actor, req.OrderID)
	if err != nil {
		return nil, err
	}

	var invoices []*models.Invoice
	switch models.SplitType(req.SplitBy) {
	case models.SplitTypeItems:
		invoices, err = s.splitByItems(tx, actor, order, req)
	case models.SplitTypeAmount:
		invoices, err = s.splitByAmount(tx, actor, order, req)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	result := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		loaded, err := s.loadInvoice(inv.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, *loaded)
	}
	return result, nil
}

func (s *billingService) GetInvoiceByID(actor Actor, invoiceID int64) (*models.Invoice, error) {
	invoice, err := s.loadInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetOrderByID(invoice.OrderID)
	if err != nil {
		return nil, fmt.Errorf("getting invoice order: %w", err)
	}
	if !actor.CanAccessOutlet(order.OutletID) {
		return nil, ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *billingService) GetInvoicesByOrder(actor Actor, orderID int64) ([]models.Invoice, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order: %w", err)
	}
	if !actor.CanAccessOutlet(order.OutletID) {
		return nil, ErrOrderNotFound
	}
	invoices, err := s.billingRepo.GetInvoicesByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		payments, err := s.billingRepo.GetPaymentsByInvoiceID(invoices[i].ID)
		if err != nil {
			return nil, err
		}
		invoices[i].Payments = payments
	}
	return invoices, nil
}

// --- split modes ---

// splitByItems validates that the split item-id sets exactly partition the
// order's items, then bills each split its own subtotal plus a
// proportional share of discount and tax.
func (s *billingService) splitByItems(tx repositories.SQLExecutor, actor Actor, order *models.Order, req SplitBillRequest) ([]*models.Invoice, error) {
	items, err := s.orderRepo.GetOrderItemsByOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("getting order items: %w", err)
	}
	itemsByID := make(map[int64]models.OrderItem, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}

	seen := make(map[int64]bool, len(items))
	subtotals := make([]float64, len(req.Splits))
	for i, split := range req.Splits {
		if len(split.ItemIDs) == 0 {
			return nil, fmt.Errorf("%w: split %d has no items", ErrValidation, i+1)
		}
		lineAmounts := make([]float64, 0, len(split.ItemIDs))
		for _, itemID := range split.ItemIDs {
			item, ok := itemsByID[itemID]
			if !ok {
				return nil, fmt.Errorf("%w: item %d does not belong to order %d", ErrValidation, itemID, order.ID)
			}
			if seen[itemID] {
				return nil, fmt.Errorf("%w: item %d appears in more than one split", ErrSplitMismatch, itemID)
			}
			seen[itemID] = true
			lineAmounts = append(lineAmounts, utils.RoundMoney(item.Price*float64(item.Quantity)))
		}
		subtotals[i] = utils.SumMoney(lineAmounts)
	}

	var missing []int64
	for _, item := range items {
		if !seen[item.ID] {
			missing = append(missing, item.ID)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: order items %v are not covered", ErrSplitMismatch, missing)
	}

	discountShares := utils.ProportionalShares(req.Discount, subtotals, order.TotalAmount)
	taxShares := utils.ProportionalShares(req.Tax, subtotals, order.TotalAmount)

	invoices := make([]*models.Invoice, 0, len(req.Splits))
	for i, split := range req.Splits {
		invoice := &models.Invoice{
			OrderID:     order.ID,
			Subtotal:    subtotals[i],
			Discount:    discountShares[i],
			Tax:         taxShares[i],
			TotalAmount: invoiceTotal(subtotals[i], discountShares[i], taxShares[i]),
			Status:      string(models.InvoiceStatusPending),
			CreatedByID: &actor.UserID,
		}
		if err := s.insertInvoice(tx, order.OutletID, invoice); err != nil {
			return nil, err
		}
		if err := s.recordSplit(tx, invoice.ID, req.SplitBy, map[string]interface{}{"item_ids": split.ItemIDs}); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}

// splitByAmount bills fixed amounts that must add up, to the cent, to the
// discounted and taxed order total.
func (s *billingService) splitByAmount(tx repositories.SQLExecutor, actor Actor, order *models.Order, req SplitBillRequest) ([]*models.Invoice, error) {
	amounts := make([]float64, len(req.Splits))
	for i, split := range req.Splits {
		if split.Amount == nil || *split.Amount <= 0 {
			return nil, fmt.Errorf("%w: split %d needs a positive amount", ErrValidation, i+1)
		}
		amounts[i] = utils.RoundMoney(*split.Amount)
	}

	expected := invoiceTotal(order.TotalAmount, req.Discount, req.Tax)
	if !utils.MoneyEquals(utils.SumMoney(amounts), expected) {
		return nil, fmt.Errorf("%w: split amounts add up to %.2f, expected %.2f", ErrSplitMismatch, utils.SumMoney(amounts), expected)
	}

	invoices := make([]*models.Invoice, 0, len(req.Splits))
	for i := range req.Splits {
		invoice := &models.Invoice{
			OrderID:     order.ID,
			Subtotal:    amounts[i],
			TotalAmount: amounts[i],
			Status:      string(models.InvoiceStatusPending),
			CreatedByID: &actor.UserID,
		}
		if err := s.insertInvoice(tx, order.OutletID, invoice); err != nil {
			return nil, err
		}
		if err := s.recordSplit(tx, invoice.ID, req.SplitBy, map[string]interface{}{"amount": amounts[i]}); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}

// --- helpers ---

// billableOrder locks the order and verifies it is ready for billing:
// in scope, ready or completed, and not yet invoiced.
func (s *billingService) billableOrder(tx repositories.SQLExecutor, actor Actor, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByIDForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("locking order: %w", err)
	}
	if !actor.CanAccessOutlet(order.OutletID) {
		return nil, ErrOrderNotFound
	}
	switch models.OrderStatus(order.Status) {
	case models.OrderStatusReady, models.OrderStatusCompleted:
	default:
		return nil, fmt.Errorf("%w: order is %s", ErrOrderNotBillable, order.Status)
	}

	count, err := s.billingRepo.CountInvoicesByOrderID(tx, orderID)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrInvoiceExists
	}
	return order, nil
}

// insertInvoice assigns the next outlet-scoped invoice number and inserts.
// The unique index on invoice_number backs up the in-transaction sequence
// read; a duplicate surfaces as a conflict.
func (s *billingService) insertInvoice(tx repositories.SQLExecutor, outletID int64, invoice *models.Invoice) error {
	latest, err := s.billingRepo.LatestInvoiceNumber(tx, outletID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("getting latest invoice number: %w", err)
	}
	invoice.InvoiceNumber = nextScopedNumber(latest, outletID, invoiceTag)

	if _, err := s.billingRepo.CreateInvoice(tx, invoice); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return fmt.Errorf("%w: invoice number collision, retry billing", ErrConflict)
		}
		return fmt.Errorf("creating invoice: %w", err)
	}
	return nil
}

func (s *billingService) recordSplit(tx repositories.SQLExecutor, invoiceID int64, splitType string, data map[string]interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding split data: %w", err)
	}
	split := &models.SplitBill{
		InvoiceID: invoiceID,
		SplitType: splitType,
		SplitData: string(payload),
	}
	if _, err := s.billingRepo.CreateSplitBill(tx, split); err != nil {
		return fmt.Errorf("recording split: %w", err)
	}
	return nil
}

func (s *billingService) loadInvoice(invoiceID int64) (*models.Invoice, error) {
	invoice, err := s.billingRepo.GetInvoiceByID(invoiceID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("getting invoice: %w", err)
	}
	payments, err := s.billingRepo.GetPaymentsByInvoiceID(invoiceID)
	if err != nil {
		return nil, err
	}
	invoice.Payments = payments
	return invoice, nil
}

func validateCharges(discount, tax float64) error {
	if discount < 0 {
		return fmt.Errorf("%w: discount must not be negative", ErrValidation)
	}
	if tax < 0 {
		return fmt.Errorf("%w: tax must not be negative", ErrValidation)
	}
	return nil
}

// invoiceTotal computes subtotal minus discount plus tax to the cent.
func invoiceTotal(subtotal, discount, tax float64) float64 {
	return utils.SumMoney([]float64{subtotal, -discount, tax})
}
