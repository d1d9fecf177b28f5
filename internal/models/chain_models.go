package models

import "time"

// RestaurantChain groups outlets under one owner.
type RestaurantChain struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	OwnerID   int64     `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// RestaurantOutlet is a single physical location of a chain. It is the
// scoping unit for token numbers, invoice numbers and notification topics.
type RestaurantOutlet struct {
	ID         int64     `json:"id"`
	ChainID    int64     `json:"chain_id" db:"chain_id" binding:"required"`
	Name       string    `json:"name" db:"name" binding:"required"`
	Address    string    `json:"address" db:"address"`
	City       string    `json:"city" db:"city"`
	State      string    `json:"state" db:"state"`
	PostalCode string    `json:"postal_code" db:"postal_code"`
	Country    string    `json:"country" db:"country"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	Email      *string   `json:"email,omitempty" db:"email"`
	Status     string    `json:"status" db:"status"` // active, inactive
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
