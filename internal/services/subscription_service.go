package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/repositories"
)

// Subscription errors.
var (
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrSubscriptionExists    = errors.New("an active or expired subscription already exists for this user")
	ErrSubscriptionCancelled = errors.New("subscription is cancelled")
)

// defaultSubscriptionDays is the plan duration applied when a create or
// renew request does not name one.
const defaultSubscriptionDays = 365

// CreateSubscriptionRequest defines the expected JSON body for
// subscription creation.
type CreateSubscriptionRequest struct {
	UserID       int64  `json:"user_id" binding:"required"`
	ChainID      *int64 `json:"chain_id"`
	Tier         string `json:"tier"`
	DurationDays int    `json:"duration_days"`
}

// UpdateSubscriptionRequest defines the expected JSON body for
// subscription updates. Nil fields keep their current value.
type UpdateSubscriptionRequest struct {
	Tier   *string `json:"tier"`
	Status *string `json:"status"`
}

// RenewSubscriptionRequest defines the expected JSON body for renewals.
type RenewSubscriptionRequest struct {
	DurationDays int `json:"duration_days"`
}

// SubscriptionService defines the interface for platform-plan management.
type SubscriptionService interface {
	CreateSubscription(actor Actor, req CreateSubscriptionRequest) (*models.Subscription, error)
	GetMySubscription(actor Actor) (*models.Subscription, error)
	ListSubscriptions(actor Actor, filters models.SubscriptionFilters) ([]models.Subscription, error)
	UpdateSubscription(actor Actor, subscriptionID int64, req UpdateSubscriptionRequest) (*models.Subscription, error)
	DeleteSubscription(actor Actor, subscriptionID int64) error
	RenewSubscription(actor Actor, subscriptionID int64, req RenewSubscriptionRequest) (*models.Subscription, error)
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	outletRepo       repositories.OutletRepository
	db               *sql.DB
}

// NewSubscriptionService creates a new instance of SubscriptionService.
func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	outletRepo repositories.OutletRepository,
	db *sql.DB,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		outletRepo:       outletRepo,
		db:               db,
	}
}

// CreateSubscription starts a plan for a user. Owners subscribe
// themselves; superadmins may subscribe anyone. A user carries at most
// one non-cancelled subscription at a time.
func (s *subscriptionService) CreateSubscription(actor Actor, req CreateSubscriptionRequest) (*models.Subscription, error) {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return nil, err
	}
	if !actor.Unrestricted && req.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: owners may only manage their own subscription", ErrForbidden)
	}

	if _, err := s.userRepo.FindUserByID(req.UserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrUserNotFound, req.UserID)
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}

	tier := req.Tier
	if tier == "" {
		tier = string(models.TierBasic)
	}
	if !models.IsValidSubscriptionTier(tier) {
		return nil, fmt.Errorf("%w: invalid subscription tier %q", ErrValidation, tier)
	}

	days := req.DurationDays
	if days == 0 {
		days = defaultSubscriptionDays
	}
	if days < 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}

	if req.ChainID != nil {
		chain, err := s.outletRepo.GetChainByID(*req.ChainID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrChainNotFound
			}
			return nil, fmt.Errorf("getting chain: %w", err)
		}
		if chain.OwnerID != req.UserID {
			return nil, fmt.Errorf("%w: chain %d is not owned by user %d", ErrValidation, *req.ChainID, req.UserID)
		}
	}

	if _, err := s.subscriptionRepo.GetCurrentSubscriptionByUser(req.UserID); err == nil {
		return nil, ErrSubscriptionExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("checking current subscription: %w", err)
	}

	start := time.Now()
	subscription := &models.Subscription{
		UserID:    req.UserID,
		ChainID:   req.ChainID,
		Tier:      tier,
		Status:    string(models.SubscriptionActive),
		StartDate: start,
		EndDate:   start.AddDate(0, 0, days),
	}
	if _, err := s.subscriptionRepo.CreateSubscription(s.db, subscription); err != nil {
		return nil, fmt.Errorf("creating subscription: %w", err)
	}
	return s.subscriptionRepo.GetSubscriptionByID(subscription.ID)
}

// GetMySubscription returns the caller's current plan.
func (s *subscriptionService) GetMySubscription(actor Actor) (*models.Subscription, error) {
	subscription, err := s.subscriptionRepo.GetCurrentSubscriptionByUser(actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("getting current subscription: %w", err)
	}
	return subscription, nil
}

// ListSubscriptions returns the plans the actor administers. Owners see
// their own; superadmins see everyone's.
func (s *subscriptionService) ListSubscriptions(actor Actor, filters models.SubscriptionFilters) ([]models.Subscription, error) {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return nil, err
	}
	if filters.Status != nil && !models.IsValidSubscriptionStatus(*filters.Status) {
		return nil, fmt.Errorf("%w: invalid subscription status %q", ErrValidation, *filters.Status)
	}
	if filters.Tier != nil && !models.IsValidSubscriptionTier(*filters.Tier) {
		return nil, fmt.Errorf("%w: invalid subscription tier %q", ErrValidation, *filters.Tier)
	}
	if !actor.Unrestricted {
		filters.UserID = &actor.UserID
	}
	subscriptions, err := s.subscriptionRepo.ListSubscriptions(filters)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return subscriptions, nil
}

// UpdateSubscription changes the tier or status of an administered plan.
func (s *subscriptionService) UpdateSubscription(actor Actor, subscriptionID int64, req UpdateSubscriptionRequest) (*models.Subscription, error) {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return nil, err
	}
	subscription, err := s.administeredSubscription(actor, subscriptionID)
	if err != nil {
		return nil, err
	}

	if req.Tier != nil {
		if !models.IsValidSubscriptionTier(*req.Tier) {
			return nil, fmt.Errorf("%w: invalid subscription tier %q", ErrValidation, *req.Tier)
		}
		subscription.Tier = *req.Tier
	}
	if req.Status != nil {
		if !models.IsValidSubscriptionStatus(*req.Status) {
			return nil, fmt.Errorf("%w: invalid subscription status %q", ErrValidation, *req.Status)
		}
		subscription.Status = *req.Status
	}

	if err := s.subscriptionRepo.UpdateSubscription(s.db, subscription); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("updating subscription: %w", err)
	}
	return s.subscriptionRepo.GetSubscriptionByID(subscriptionID)
}

// DeleteSubscription removes a plan record entirely.
func (s *subscriptionService) DeleteSubscription(actor Actor, subscriptionID int64) error {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return err
	}
	subscription, err := s.administeredSubscription(actor, subscriptionID)
	if err != nil {
		return err
	}
	if err := s.subscriptionRepo.DeleteSubscription(s.db, subscription.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSubscriptionNotFound
		}
		return fmt.Errorf("deleting subscription: %w", err)
	}
	return nil
}

// RenewSubscription extends a plan and reactivates it if expired. The
// extension is anchored on whichever is later, now or the current end
// date, so early renewal never loses paid-for time.
func (s *subscriptionService) RenewSubscription(actor Actor, subscriptionID int64, req RenewSubscriptionRequest) (*models.Subscription, error) {
	days := req.DurationDays
	if days == 0 {
		days = defaultSubscriptionDays
	}
	if days < 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	subscription, err := s.subscriptionRepo.GetSubscriptionByIDForUpdate(tx, subscriptionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("getting subscription: %w", err)
	}
	if !actor.Unrestricted && subscription.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: subscription %d", ErrSubscriptionNotFound, subscriptionID)
	}
	if subscription.Status == string(models.SubscriptionCancelled) {
		return nil, ErrSubscriptionCancelled
	}

	anchor := subscription.EndDate
	if now := time.Now(); anchor.Before(now) {
		anchor = now
	}
	subscription.EndDate = anchor.AddDate(0, 0, days)
	subscription.Status = string(models.SubscriptionActive)

	if err := s.subscriptionRepo.UpdateSubscription(tx, subscription); err != nil {
		return nil, fmt.Errorf("renewing subscription: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return s.subscriptionRepo.GetSubscriptionByID(subscriptionID)
}

// administeredSubscription loads a subscription and verifies the actor
// administers it. Plans of other users read as not found.
func (s *subscriptionService) administeredSubscription(actor Actor, subscriptionID int64) (*models.Subscription, error) {
	subscription, err := s.subscriptionRepo.GetSubscriptionByID(subscriptionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("getting subscription: %w", err)
	}
	if !actor.Unrestricted && subscription.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: subscription %d", ErrSubscriptionNotFound, subscriptionID)
	}
	return subscription, nil
}
