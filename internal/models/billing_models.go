package models

import "time"

// PaymentMethod defines how a payment is recorded. Payments are recorded,
// not processed online.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodUPI  PaymentMethod = "upi"
)

// IsValidPaymentMethod checks if the provided method string is a valid PaymentMethod.
func IsValidPaymentMethod(method string) bool {
	switch PaymentMethod(method) {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI:
		return true
	default:
		return false
	}
}

// PaymentStatus defines the type for payment statuses.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// InvoiceStatus defines the type for invoice statuses.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusCompleted InvoiceStatus = "completed"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// SplitType defines how a bill is divided across invoices.
type SplitType string

const (
	SplitTypeItems  SplitType = "items"
	SplitTypeAmount SplitType = "amount"
)

// IsValidSplitType checks if the provided type string is a valid SplitType.
func IsValidSplitType(splitType string) bool {
	switch SplitType(splitType) {
	case SplitTypeItems, SplitTypeAmount:
		return true
	default:
		return false
	}
}

// Invoice bills an order. Invoice numbers are a unique outlet-scoped
// sequence. At most one non-split invoice exists per order; split billing
// produces one invoice per split.
type Invoice struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoice_number" db:"invoice_number"`
	OrderID       int64     `json:"order_id" db:"order_id"`
	Subtotal      float64   `json:"subtotal" db:"subtotal"`
	Discount      float64   `json:"discount" db:"discount"`
	Tax           float64   `json:"tax" db:"tax"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	Status        string    `json:"status" db:"status"`
	CreatedByID   *int64    `json:"created_by_id,omitempty" db:"created_by_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
	Payments      []Payment `json:"payments,omitempty"`
}

// Payment records a settlement against an invoice.
type Payment struct {
	ID            int64     `json:"id"`
	InvoiceID     int64     `json:"invoice_id" db:"invoice_id"`
	Amount        float64   `json:"amount" db:"amount"`
	Method        string    `json:"method" db:"method"`
	Status        string    `json:"status" db:"status"`
	TransactionID *string   `json:"transaction_id,omitempty" db:"transaction_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SplitBill records how one invoice was carved out of an order, either a
// set of order item ids or a fixed amount. SplitData is serialized JSON.
type SplitBill struct {
	ID        int64     `json:"id"`
	InvoiceID int64     `json:"invoice_id" db:"invoice_id"`
	SplitType string    `json:"split_type" db:"split_type"`
	SplitData string    `json:"split_data" db:"split_data"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
