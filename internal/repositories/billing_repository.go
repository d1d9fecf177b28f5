package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"

	"github.com/lib/pq"
)

// BillingRepository defines the interface for invoice, payment and
// split-bill database operations.
type BillingRepository interface {
	// Invoice methods
	CreateInvoice(executor SQLExecutor, invoice *models.Invoice) (int64, error)
	GetInvoiceByID(invoiceID int64) (*models.Invoice, error)
	GetInvoiceByIDForUpdate(executor SQLExecutor, invoiceID int64) (*models.Invoice, error)
	GetInvoicesByOrderID(orderID int64) ([]models.Invoice, error)
	CountInvoicesByOrderID(executor SQLExecutor, orderID int64) (int, error)
	UpdateInvoiceStatus(executor SQLExecutor, invoiceID int64, newStatus string, updatedAt time.Time) error

	// LatestInvoiceNumber returns the most recent invoice number issued for
	// an outlet, or ErrNotFound when the outlet has no invoices yet.
	LatestInvoiceNumber(executor SQLExecutor, outletID int64) (string, error)

	// Payment methods
	CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error)
	GetPaymentsByInvoiceID(invoiceID int64) ([]models.Payment, error)
	UpdatePaymentsStatusByInvoice(executor SQLExecutor, invoiceID int64, newStatus string, updatedAt time.Time) error

	// SplitBill methods
	CreateSplitBill(executor SQLExecutor, split *models.SplitBill) (int64, error)
}

type billingRepository struct {
	db *sql.DB
}

// NewBillingRepository creates a new instance of BillingRepository.
func NewBillingRepository(db *sql.DB) BillingRepository {
	return &billingRepository{db: db}
}

// --- Invoice Methods ---

func (r *billingRepository) CreateInvoice(executor SQLExecutor, invoice *models.Invoice) (int64, error) {
	query := `INSERT INTO invoices
	            (invoice_number, order_id, subtotal, discount, tax, total_amount, status, created_by_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`

	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now()
	}
	if invoice.UpdatedAt.IsZero() {
		invoice.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		invoice.InvoiceNumber, invoice.OrderID, invoice.Subtotal, invoice.Discount, invoice.Tax,
		invoice.TotalAmount, invoice.Status, invoice.CreatedByID,
		invoice.CreatedAt, invoice.UpdatedAt,
	).Scan(&invoice.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return 0, fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
			case "23503":
				return 0, fmt.Errorf("%w: creating invoice (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
			}
		}
		return 0, fmt.Errorf("%w: creating invoice: %v", ErrDatabaseError, err)
	}
	return invoice.ID, nil
}

const invoiceColumns = `id, invoice_number, order_id, subtotal, discount, tax, total_amount, status, created_by_id, created_at, updated_at`

func scanInvoice(row *sql.Row) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	err := row.Scan(
		&invoice.ID, &invoice.InvoiceNumber, &invoice.OrderID, &invoice.Subtotal,
		&invoice.Discount, &invoice.Tax, &invoice.TotalAmount, &invoice.Status,
		&invoice.CreatedByID, &invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning invoice: %v", ErrDatabaseError, err)
	}
	return invoice, nil
}

func (r *billingRepository) GetInvoiceByID(invoiceID int64) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return scanInvoice(r.db.QueryRow(query, invoiceID))
}

func (r *billingRepository) GetInvoiceByIDForUpdate(executor SQLExecutor, invoiceID int64) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	return scanInvoice(executor.QueryRow(query, invoiceID))
}

func (r *billingRepository) GetInvoicesByOrderID(orderID int64) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE order_id = $1 ORDER BY id`
	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying invoices for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var inv models.Invoice
		err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.OrderID, &inv.Subtotal,
			&inv.Discount, &inv.Tax, &inv.TotalAmount, &inv.Status,
			&inv.CreatedByID, &inv.CreatedAt, &inv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning invoice for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		invoices = append(invoices, inv)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating invoice rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return invoices, nil
}

func (r *billingRepository) CountInvoicesByOrderID(executor SQLExecutor, orderID int64) (int, error) {
	var count int
	err := executor.QueryRow(`SELECT COUNT(*) FROM invoices WHERE order_id = $1`, orderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting invoices for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return count, nil
}

func (r *billingRepository) UpdateInvoiceStatus(executor SQLExecutor, invoiceID int64, newStatus string, updatedAt time.Time) error {
	query := `UPDATE invoices SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, newStatus, updatedAt, invoiceID)
	if err != nil {
		return fmt.Errorf("%w: updating invoice status for ID %d: %v", ErrDatabaseError, invoiceID, err)
	}
	return requireRowsAffected(result, "invoice status update")
}

func (r *billingRepository) LatestInvoiceNumber(executor SQLExecutor, outletID int64) (string, error) {
	var number string
	query := `SELECT i.invoice_number
	          FROM invoices i
	          JOIN orders o ON i.order_id = o.id
	          WHERE o.outlet_id = $1
	          ORDER BY i.id DESC
	          LIMIT 1`
	err := executor.QueryRow(query, outletID).Scan(&number)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting latest invoice number for outlet %d: %v", ErrDatabaseError, outletID, err)
	}
	return number, nil
}

// --- Payment Methods ---

func (r *billingRepository) CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments (invoice_id, amount, method, status, transaction_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	if payment.UpdatedAt.IsZero() {
		payment.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		payment.InvoiceID, payment.Amount, payment.Method, payment.Status, payment.TransactionID,
		payment.CreatedAt, payment.UpdatedAt,
	).Scan(&payment.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating payment (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating payment: %v", ErrDatabaseError, err)
	}
	return payment.ID, nil
}

func (r *billingRepository) GetPaymentsByInvoiceID(invoiceID int64) ([]models.Payment, error) {
	payments := []models.Payment{}
	query := `SELECT id, invoice_id, amount, method, status, transaction_id, created_at, updated_at
	          FROM payments WHERE invoice_id = $1 ORDER BY id`
	rows, err := r.db.Query(query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying payments for invoice ID %d: %v", ErrDatabaseError, invoiceID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Payment
		err := rows.Scan(
			&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Status, &p.TransactionID,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning payment for invoice ID %d: %v", ErrDatabaseError, invoiceID, err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment rows for invoice ID %d: %v", ErrDatabaseError, invoiceID, err)
	}
	return payments, nil
}

func (r *billingRepository) UpdatePaymentsStatusByInvoice(executor SQLExecutor, invoiceID int64, newStatus string, updatedAt time.Time) error {
	query := `UPDATE payments SET status = $1, updated_at = $2 WHERE invoice_id = $3`
	_, err := executor.Exec(query, newStatus, updatedAt, invoiceID)
	if err != nil {
		return fmt.Errorf("%w: updating payments status for invoice ID %d: %v", ErrDatabaseError, invoiceID, err)
	}
	return nil
}

// --- SplitBill Methods ---

func (r *billingRepository) CreateSplitBill(executor SQLExecutor, split *models.SplitBill) (int64, error) {
	query := `INSERT INTO split_bills (invoice_id, split_type, split_data, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	if split.CreatedAt.IsZero() {
		split.CreatedAt = time.Now()
	}
	if split.UpdatedAt.IsZero() {
		split.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		split.InvoiceID, split.SplitType, split.SplitData, split.CreatedAt, split.UpdatedAt,
	).Scan(&split.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating split bill (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating split bill: %v", ErrDatabaseError, err)
	}
	return split.ID, nil
}
