package models

import "time"

// TableStatus defines the type for table statuses.
type TableStatus string

const (
	TableStatusAvailable          TableStatus = "available"
	TableStatusOccupied           TableStatus = "occupied"
	TableStatusReserved           TableStatus = "reserved"
	TableStatusOutOfService       TableStatus = "out_of_service"
	TableStatusWaitingForCleaning TableStatus = "waiting_for_cleaning" // needs cleaning before the next use
	TableStatusMerged             TableStatus = "merged"               // combined with neighbours for a large group
)

// IsValidTableStatus checks if the provided status string is a valid TableStatus.
func IsValidTableStatus(status string) bool {
	switch TableStatus(status) {
	case TableStatusAvailable,
		TableStatusOccupied,
		TableStatusReserved,
		TableStatusOutOfService,
		TableStatusWaitingForCleaning,
		TableStatusMerged:
		return true
	default:
		return false
	}
}

// Area is a seating area within an outlet (terrace, main hall, ...).
type Area struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	OutletID  int64     `json:"outlet_id" db:"outlet_id" binding:"required"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Table represents a physical table within an area. Its status is mutated
// only by the order engine or an explicit management action.
type Table struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	Capacity  int       `json:"capacity" db:"capacity" binding:"required,gt=0"`
	Status    string    `json:"status" db:"status"`
	AreaID    int64     `json:"area_id" db:"area_id" binding:"required"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Area      *Area     `json:"area,omitempty"` // For joining with Area details
}
