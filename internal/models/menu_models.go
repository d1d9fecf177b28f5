package models

import "time"

// MenuScope defines whether a category belongs to a whole chain or one outlet.
type MenuScope string

const (
	MenuScopeChain  MenuScope = "chain"
	MenuScopeOutlet MenuScope = "outlet"
)

// IsValidMenuScope checks if the provided scope string is a valid MenuScope.
func IsValidMenuScope(scope string) bool {
	switch MenuScope(scope) {
	case MenuScopeChain, MenuScopeOutlet:
		return true
	default:
		return false
	}
}

// MenuCategory groups sellable items, scoped to a chain or a single outlet.
type MenuCategory struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" db:"name" binding:"required"`
	Description *string   `json:"description,omitempty" db:"description"`
	Scope       string    `json:"scope" db:"scope" binding:"required"`
	ChainID     *int64    `json:"chain_id,omitempty" db:"chain_id"`
	OutletID    *int64    `json:"outlet_id,omitempty" db:"outlet_id"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// MenuItem is a sellable item. Its price is copied into order items at
// order time, so later price changes never alter historical orders.
type MenuItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name" db:"name" binding:"required"`
	Description *string   `json:"description,omitempty" db:"description"`
	Price       float64   `json:"price" db:"price" binding:"required,gte=0"`
	CategoryID  int64     `json:"category_id" db:"category_id" binding:"required"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// MenuItemFilters defines the available filters for querying menu items.
type MenuItemFilters struct {
	CategoryID *int64  `form:"category_id"`
	Available  *bool   `form:"available"`
	Search     *string `form:"search"`
	Page       int     `form:"page"`
	PageSize   int     `form:"page_size"`
}
