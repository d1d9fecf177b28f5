package models

import "time"

// UserRole defines the type for user roles.
type UserRole string

const (
	RoleSuperAdmin UserRole = "superadmin" // Operator of the POS platform itself
	RoleOwner      UserRole = "owner"      // Owner of a restaurant chain
	RoleManager    UserRole = "manager"    // Manages operations at one outlet
	RoleWaiter     UserRole = "waiter"     // Takes orders
	RoleKitchen    UserRole = "kitchen"    // Works the kitchen tickets
)

// IsValidUserRole checks if the provided status string is a valid UserRole.
func IsValidUserRole(role string) bool {
	switch UserRole(role) {
	case RoleSuperAdmin, RoleOwner, RoleManager, RoleWaiter, RoleKitchen:
		return true
	default:
		return false
	}
}

// RequiresOutlet reports whether a role must be assigned to a single outlet.
// Managers, waiters and kitchen staff always act within one outlet; owners
// and superadmins are scoped through chains instead.
func (r UserRole) RequiresOutlet() bool {
	switch r {
	case RoleManager, RoleWaiter, RoleKitchen:
		return true
	default:
		return false
	}
}

// UserFilters narrows user listings. A nil OutletIDs slice means no
// outlet restriction; an empty one matches nothing.
type UserFilters struct {
	Role      *string
	IsActive  *bool
	OutletIDs []int64
}

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // never serialized
	PIN          *string   `json:"-" db:"pin"`           // optional 6-digit PIN for terminal login
	Role         string    `json:"role" db:"role"`
	OutletID     *int64    `json:"outlet_id,omitempty" db:"outlet_id"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
