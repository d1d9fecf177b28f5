package models

import "time"

// OrderType defines how an order is fulfilled.
type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine_in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

// IsValidOrderType checks if the provided type string is a valid OrderType.
func IsValidOrderType(orderType string) bool {
	switch OrderType(orderType) {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	default:
		return false
	}
}

// OrderStatus defines the type for order statuses. Order status is a
// derived aggregate over the order's kitchen tickets.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// orderTransitions is the legal status adjacency for orders.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
}

// IsValidOrderStatus checks if the provided status string is a valid OrderStatus.
func IsValidOrderStatus(status string) bool {
	_, ok := orderTransitions[OrderStatus(status)]
	return ok
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// KOTStatus defines the type for kitchen ticket statuses.
type KOTStatus string

const (
	KOTStatusPending   KOTStatus = "pending"
	KOTStatusPreparing KOTStatus = "preparing"
	KOTStatusReady     KOTStatus = "ready"
	KOTStatusCompleted KOTStatus = "completed"
	KOTStatusCancelled KOTStatus = "cancelled"
)

// kotTransitions is the legal status adjacency for kitchen tickets.
var kotTransitions = map[KOTStatus][]KOTStatus{
	KOTStatusPending:   {KOTStatusPreparing, KOTStatusCancelled},
	KOTStatusPreparing: {KOTStatusReady, KOTStatusCancelled},
	KOTStatusReady:     {KOTStatusCompleted, KOTStatusCancelled},
	KOTStatusCompleted: {},
	KOTStatusCancelled: {},
}

// IsValidKOTStatus checks if the provided status string is a valid KOTStatus.
func IsValidKOTStatus(status string) bool {
	_, ok := kotTransitions[KOTStatus(status)]
	return ok
}

// CanTransitionKOT reports whether a ticket may move from one status to another.
func CanTransitionKOT(from, to KOTStatus) bool {
	for _, next := range kotTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a customer order at one outlet. Token numbers are unique and
// monotonically increasing per outlet. TotalAmount is cached for reads but
// always recomputed from the owned items on mutation.
type Order struct {
	ID          int64       `json:"id"`
	TokenNumber string      `json:"token_number" db:"token_number"`
	OutletID    int64       `json:"outlet_id" db:"outlet_id"`
	TableID     *int64      `json:"table_id,omitempty" db:"table_id"`
	OrderType   string      `json:"order_type" db:"order_type"`
	Status      string      `json:"status" db:"status"`
	TotalAmount float64     `json:"total_amount" db:"total_amount"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
	Items       []OrderItem `json:"items,omitempty"`
	Table       *Table      `json:"table,omitempty"` // For joining with Table details
}

// OrderItem is one line of an order with the menu price snapshot taken at
// creation time. Each item owns exactly one KOT.
type OrderItem struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id" db:"order_id"`
	MenuItemID int64     `json:"menu_item_id" db:"menu_item_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	Price      float64   `json:"price" db:"price"` // snapshot, not a live reference
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	ItemName   string    `json:"item_name,omitempty" db:"item_name"` // joined from menu_items
	KOT        *KOT      `json:"kot,omitempty"`
}

// KOT is a kitchen order ticket, the unit of kitchen workflow. Its status
// is independent of the parent order's derived aggregate status.
type KOT struct {
	ID          int64     `json:"id"`
	OrderItemID int64     `json:"order_item_id" db:"order_item_id"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Joined context for kitchen displays.
	OrderID  int64   `json:"order_id,omitempty" db:"order_id"`
	OutletID int64   `json:"outlet_id,omitempty" db:"outlet_id"`
	ItemName string  `json:"item_name,omitempty" db:"item_name"`
	Quantity int     `json:"quantity,omitempty" db:"quantity"`
	Notes    *string `json:"notes,omitempty" db:"notes"`
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	OutletID *int64  `form:"outlet_id"`
	TableID  *int64  `form:"table_id"`
	Status   *string `form:"status"`
	Date     *string `form:"date"` // Expected format YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// KOTFilters defines the available filters for querying kitchen tickets.
type KOTFilters struct {
	OutletID int64   `form:"outlet_id"`
	Status   *string `form:"status"`
}
