package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Event types pushed to connected clients.
const (
	EventNewKOT            = "new_kot"
	EventKOTStatusUpdate   = "kot_status_update"
	EventOrderStatusUpdate = "order_status_update"
	EventPaymentCompleted  = "payment_completed"
)

// Event is a single notification broadcast on an outlet topic. Delivery is
// best-effort, at-most-once; missed events are recoverable by polling the
// order/KOT read APIs.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"event"`
	OutletID  int64     `json:"outlet_id"`
	OrderID   int64     `json:"order_id,omitempty"`
	KOTID     int64     `json:"kot_id,omitempty"`
	InvoiceID int64     `json:"invoice_id,omitempty"`
	Status    string    `json:"status,omitempty"`
	ItemName  string    `json:"item_name,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType string, outletID int64) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		OutletID:  outletID,
		Timestamp: time.Now().UTC(),
	}
}
