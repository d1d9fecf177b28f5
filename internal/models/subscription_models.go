package models

import "time"

// SubscriptionTier defines the type for subscription tiers.
type SubscriptionTier string

const (
	TierFree    SubscriptionTier = "free"
	TierBasic   SubscriptionTier = "basic"
	TierPremium SubscriptionTier = "premium"
)

// IsValidSubscriptionTier checks if the provided string is a valid SubscriptionTier.
func IsValidSubscriptionTier(tier string) bool {
	switch SubscriptionTier(tier) {
	case TierFree, TierBasic, TierPremium:
		return true
	default:
		return false
	}
}

// SubscriptionStatus defines the type for subscription statuses.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// IsValidSubscriptionStatus checks if the provided string is a valid SubscriptionStatus.
func IsValidSubscriptionStatus(status string) bool {
	switch SubscriptionStatus(status) {
	case SubscriptionActive, SubscriptionExpired, SubscriptionCancelled:
		return true
	default:
		return false
	}
}

// Subscription is an owner's platform plan. At most one non-cancelled
// subscription exists per user; an expired one blocks a fresh create and
// must be renewed instead.
type Subscription struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ChainID   *int64    `json:"chain_id,omitempty" db:"chain_id"`
	Tier      string    `json:"tier" db:"tier"`
	Status    string    `json:"status" db:"status"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SubscriptionFilters narrows subscription listings.
type SubscriptionFilters struct {
	UserID *int64
	Status *string
	Tier   *string
}
