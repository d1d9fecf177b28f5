package services

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/repositories"
)

type fakeSubscriptionRepo struct {
	subscriptions map[int64]*models.Subscription
	nextID        int64
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subscriptions: make(map[int64]*models.Subscription)}
}

func (r *fakeSubscriptionRepo) CreateSubscription(_ repositories.SQLExecutor, subscription *models.Subscription) (int64, error) {
	r.nextID++
	subscription.ID = r.nextID
	copied := *subscription
	r.subscriptions[subscription.ID] = &copied
	return subscription.ID, nil
}

func (r *fakeSubscriptionRepo) GetSubscriptionByID(subscriptionID int64) (*models.Subscription, error) {
	subscription, ok := r.subscriptions[subscriptionID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *subscription
	return &copied, nil
}

func (r *fakeSubscriptionRepo) GetSubscriptionByIDForUpdate(_ repositories.SQLExecutor, subscriptionID int64) (*models.Subscription, error) {
	return r.GetSubscriptionByID(subscriptionID)
}

func (r *fakeSubscriptionRepo) GetCurrentSubscriptionByUser(userID int64) (*models.Subscription, error) {
	var latest *models.Subscription
	for _, subscription := range r.subscriptions {
		if subscription.UserID != userID {
			continue
		}
		if subscription.Status != string(models.SubscriptionActive) && subscription.Status != string(models.SubscriptionExpired) {
			continue
		}
		if latest == nil || subscription.ID > latest.ID {
			latest = subscription
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeSubscriptionRepo) ListSubscriptions(filters models.SubscriptionFilters) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, subscription := range r.subscriptions {
		if filters.UserID != nil && subscription.UserID != *filters.UserID {
			continue
		}
		if filters.Status != nil && subscription.Status != *filters.Status {
			continue
		}
		if filters.Tier != nil && subscription.Tier != *filters.Tier {
			continue
		}
		out = append(out, *subscription)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSubscriptionRepo) UpdateSubscription(_ repositories.SQLExecutor, subscription *models.Subscription) error {
	if _, ok := r.subscriptions[subscription.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *subscription
	r.subscriptions[subscription.ID] = &copied
	return nil
}

func (r *fakeSubscriptionRepo) DeleteSubscription(_ repositories.SQLExecutor, subscriptionID int64) error {
	if _, ok := r.subscriptions[subscriptionID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.subscriptions, subscriptionID)
	return nil
}

func newSubscriptionFixture(t *testing.T) (SubscriptionService, *fakeSubscriptionRepo, *fakeUserRepo) {
	t.Helper()
	subscriptions := newFakeSubscriptionRepo()
	users := newFakeUserRepo()
	users.addUser(10, string(models.RoleOwner), nil)
	users.addUser(11, string(models.RoleOwner), nil)
	outlets := newFakeOutletRepo()
	outlets.addOutlet(1, 1, 10)
	return NewSubscriptionService(subscriptions, users, outlets, newTestDB(t)), subscriptions, users
}

func TestCreateSubscription(t *testing.T) {
	svc, _, _ := newSubscriptionFixture(t)

	subscription, err := svc.CreateSubscription(ownerActor(), CreateSubscriptionRequest{UserID: 10, ChainID: int64Ptr(1)})
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if subscription.Tier != string(models.TierBasic) || subscription.Status != string(models.SubscriptionActive) {
		t.Errorf("subscription = %+v, want basic and active", subscription)
	}
	if !subscription.EndDate.Equal(subscription.StartDate.AddDate(0, 0, 365)) {
		t.Errorf("EndDate = %v, want one year after %v", subscription.EndDate, subscription.StartDate)
	}
	if subscription.ChainID == nil || *subscription.ChainID != 1 {
		t.Errorf("ChainID = %v, want 1", subscription.ChainID)
	}

	// One non-cancelled subscription per user.
	if _, err := svc.CreateSubscription(ownerActor(), CreateSubscriptionRequest{UserID: 10}); !errors.Is(err, ErrSubscriptionExists) {
		t.Errorf("duplicate: error = %v, want %v", err, ErrSubscriptionExists)
	}
}

func TestCreateSubscriptionValidation(t *testing.T) {
	admin := Actor{UserID: 1, Role: models.RoleSuperAdmin, Unrestricted: true}

	tests := []struct {
		name    string
		actor   Actor
		req     CreateSubscriptionRequest
		wantErr error
	}{
		{
			name:    "owner may not subscribe another user",
			actor:   ownerActor(),
			req:     CreateSubscriptionRequest{UserID: 11},
			wantErr: ErrForbidden,
		},
		{
			name:    "manager may not subscribe at all",
			actor:   managerActor(),
			req:     CreateSubscriptionRequest{UserID: 22},
			wantErr: ErrForbidden,
		},
		{
			name:    "unknown user",
			actor:   admin,
			req:     CreateSubscriptionRequest{UserID: 999},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "invalid tier",
			actor:   ownerActor(),
			req:     CreateSubscriptionRequest{UserID: 10, Tier: "platinum"},
			wantErr: ErrValidation,
		},
		{
			name:    "negative duration",
			actor:   ownerActor(),
			req:     CreateSubscriptionRequest{UserID: 10, DurationDays: -5},
			wantErr: ErrValidation,
		},
		{
			name:    "unknown chain",
			actor:   ownerActor(),
			req:     CreateSubscriptionRequest{UserID: 10, ChainID: int64Ptr(42)},
			wantErr: ErrChainNotFound,
		},
		{
			name:    "chain owned by another user",
			actor:   admin,
			req:     CreateSubscriptionRequest{UserID: 11, ChainID: int64Ptr(1)},
			wantErr: ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newSubscriptionFixture(t)
			if _, err := svc.CreateSubscription(tt.actor, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateSubscription() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Superadmins may subscribe any existing user.
	svc, _, _ := newSubscriptionFixture(t)
	if _, err := svc.CreateSubscription(admin, CreateSubscriptionRequest{UserID: 11, Tier: string(models.TierPremium)}); err != nil {
		t.Errorf("superadmin create: error = %v", err)
	}
}

func TestRenewSubscription(t *testing.T) {
	svc, subscriptions, _ := newSubscriptionFixture(t)

	created, err := svc.CreateSubscription(ownerActor(), CreateSubscriptionRequest{UserID: 10, DurationDays: 30})
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}

	// Early renewal extends from the current end date.
	renewed, err := svc.RenewSubscription(ownerActor(), created.ID, RenewSubscriptionRequest{DurationDays: 30})
	if err != nil {
		t.Fatalf("RenewSubscription() error = %v", err)
	}
	if !renewed.EndDate.Equal(created.EndDate.AddDate(0, 0, 30)) {
		t.Errorf("EndDate = %v, want %v", renewed.EndDate, created.EndDate.AddDate(0, 0, 30))
	}

	// An expired subscription reactivates and extends from now.
	subscriptions.subscriptions[created.ID].Status = string(models.SubscriptionExpired)
	subscriptions.subscriptions[created.ID].EndDate = time.Now().AddDate(0, 0, -10)
	renewed, err = svc.RenewSubscription(ownerActor(), created.ID, RenewSubscriptionRequest{})
	if err != nil {
		t.Fatalf("RenewSubscription(expired) error = %v", err)
	}
	if renewed.Status != string(models.SubscriptionActive) {
		t.Errorf("Status = %q, want active", renewed.Status)
	}
	if renewed.EndDate.Before(time.Now().AddDate(0, 0, 364)) {
		t.Errorf("EndDate = %v, want about a year out", renewed.EndDate)
	}

	subscriptions.subscriptions[created.ID].Status = string(models.SubscriptionCancelled)
	if _, err := svc.RenewSubscription(ownerActor(), created.ID, RenewSubscriptionRequest{}); !errors.Is(err, ErrSubscriptionCancelled) {
		t.Errorf("cancelled: error = %v, want %v", err, ErrSubscriptionCancelled)
	}

	stranger := Actor{UserID: 11, Role: models.RoleOwner}
	if _, err := svc.RenewSubscription(stranger, created.ID, RenewSubscriptionRequest{}); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("foreign renewal: error = %v, want %v", err, ErrSubscriptionNotFound)
	}
	if _, err := svc.RenewSubscription(ownerActor(), created.ID, RenewSubscriptionRequest{DurationDays: -1}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative duration: error = %v, want %v", err, ErrValidation)
	}
}

func TestUpdateAndListSubscriptions(t *testing.T) {
	svc, subscriptions, _ := newSubscriptionFixture(t)
	admin := Actor{UserID: 1, Role: models.RoleSuperAdmin, Unrestricted: true}

	created, err := svc.CreateSubscription(ownerActor(), CreateSubscriptionRequest{UserID: 10})
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if _, err := svc.CreateSubscription(admin, CreateSubscriptionRequest{UserID: 11}); err != nil {
		t.Fatalf("CreateSubscription(other owner) error = %v", err)
	}

	premium := string(models.TierPremium)
	updated, err := svc.UpdateSubscription(ownerActor(), created.ID, UpdateSubscriptionRequest{Tier: &premium})
	if err != nil {
		t.Fatalf("UpdateSubscription() error = %v", err)
	}
	if updated.Tier != premium {
		t.Errorf("Tier = %q, want premium", updated.Tier)
	}

	bad := "paused"
	if _, err := svc.UpdateSubscription(ownerActor(), created.ID, UpdateSubscriptionRequest{Status: &bad}); !errors.Is(err, ErrValidation) {
		t.Errorf("invalid status: error = %v, want %v", err, ErrValidation)
	}

	// Owners list only their own plans.
	listed, err := svc.ListSubscriptions(ownerActor(), models.SubscriptionFilters{})
	if err != nil {
		t.Fatalf("ListSubscriptions() error = %v", err)
	}
	if len(listed) != 1 || listed[0].UserID != 10 {
		t.Errorf("owner listing = %+v, want only user 10", listed)
	}

	listed, err = svc.ListSubscriptions(admin, models.SubscriptionFilters{Tier: &premium})
	if err != nil {
		t.Fatalf("ListSubscriptions(superadmin) error = %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Errorf("tier filter = %+v, want subscription %d", listed, created.ID)
	}

	if _, err := svc.ListSubscriptions(managerActor(), models.SubscriptionFilters{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("manager listing: error = %v, want %v", err, ErrForbidden)
	}

	// Other owners' plans read as not found.
	foreignID := int64(0)
	for id, s := range subscriptions.subscriptions {
		if s.UserID == 11 {
			foreignID = id
		}
	}
	if _, err := svc.UpdateSubscription(ownerActor(), foreignID, UpdateSubscriptionRequest{Tier: &premium}); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("foreign update: error = %v, want %v", err, ErrSubscriptionNotFound)
	}
}

func TestDeleteSubscription(t *testing.T) {
	svc, _, _ := newSubscriptionFixture(t)

	created, err := svc.CreateSubscription(ownerActor(), CreateSubscriptionRequest{UserID: 10})
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	if err := svc.DeleteSubscription(ownerActor(), created.ID); err != nil {
		t.Fatalf("DeleteSubscription() error = %v", err)
	}
	if err := svc.DeleteSubscription(ownerActor(), created.ID); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("repeated delete: error = %v, want %v", err, ErrSubscriptionNotFound)
	}
}

func TestGetMySubscription(t *testing.T) {
	svc, _, _ := newSubscriptionFixture(t)

	if _, err := svc.GetMySubscription(ownerActor()); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("no subscription: error = %v, want %v", err, ErrSubscriptionNotFound)
	}

	if _, err := svc.CreateSubscription(ownerActor(), CreateSubscriptionRequest{UserID: 10}); err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}
	subscription, err := svc.GetMySubscription(ownerActor())
	if err != nil {
		t.Fatalf("GetMySubscription() error = %v", err)
	}
	if subscription.UserID != 10 {
		t.Errorf("UserID = %d, want 10", subscription.UserID)
	}
}
