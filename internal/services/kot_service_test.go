package services

import (
	"errors"
	"testing"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/notifications"
)

func kotStatuses(statuses ...models.KOTStatus) []models.KOT {
	kots := make([]models.KOT, len(statuses))
	for i, s := range statuses {
		kots[i] = models.KOT{ID: int64(i + 1), Status: string(s)}
	}
	return kots
}

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		current models.OrderStatus
		kots    []models.KOT
		want    models.OrderStatus
	}{
		{
			name:    "no tickets keeps current",
			current: models.OrderStatusPending,
			kots:    nil,
			want:    models.OrderStatusPending,
		},
		{
			name:    "all completed",
			current: models.OrderStatusReady,
			kots:    kotStatuses(models.KOTStatusCompleted, models.KOTStatusCompleted),
			want:    models.OrderStatusCompleted,
		},
		{
			name:    "all ready",
			current: models.OrderStatusPreparing,
			kots:    kotStatuses(models.KOTStatusReady, models.KOTStatusReady),
			want:    models.OrderStatusReady,
		},
		{
			name:    "one preparing wins over ready",
			current: models.OrderStatusPending,
			kots:    kotStatuses(models.KOTStatusReady, models.KOTStatusPreparing),
			want:    models.OrderStatusPreparing,
		},
		{
			name:    "all cancelled",
			current: models.OrderStatusPreparing,
			kots:    kotStatuses(models.KOTStatusCancelled, models.KOTStatusCancelled),
			want:    models.OrderStatusCancelled,
		},
		{
			name:    "cancelled and completed mix settles cancelled",
			current: models.OrderStatusPreparing,
			kots:    kotStatuses(models.KOTStatusCancelled, models.KOTStatusCompleted),
			want:    models.OrderStatusCancelled,
		},
		{
			name:    "cancelled with pending rest keeps current",
			current: models.OrderStatusPending,
			kots:    kotStatuses(models.KOTStatusCancelled, models.KOTStatusPending),
			want:    models.OrderStatusPending,
		},
		{
			name:    "ready and pending keeps current",
			current: models.OrderStatusPreparing,
			kots:    kotStatuses(models.KOTStatusReady, models.KOTStatusPending),
			want:    models.OrderStatusPreparing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveOrderStatus(tt.current, tt.kots); got != tt.want {
				t.Errorf("deriveOrderStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

// orderKOTIDs returns the ticket ids of an order in creation sequence.
func orderKOTIDs(t *testing.T, f *fixture, orderID int64) []int64 {
	t.Helper()
	kots, err := f.orders.GetKOTsByOrderID(nil, orderID)
	if err != nil {
		t.Fatalf("listing tickets: %v", err)
	}
	ids := make([]int64, len(kots))
	for i, k := range kots {
		ids[i] = k.ID
	}
	return ids
}

func advanceKOT(t *testing.T, f *fixture, actor Actor, kotID int64, status models.KOTStatus) *models.KOT {
	t.Helper()
	kot, err := f.kotService.UpdateKOTStatus(actor, kotID, UpdateKOTStatusRequest{Status: string(status)})
	if err != nil {
		t.Fatalf("UpdateKOTStatus(%d, %s) error = %v", kotID, status, err)
	}
	return kot
}

func TestUpdateKOTStatusAggregatesOrder(t *testing.T) {
	f := newFixture(t)
	order := createDineInOrder(t, f)
	kotIDs := orderKOTIDs(t, f, order.ID)
	if len(kotIDs) != 2 {
		t.Fatalf("len(kots) = %d, want 2", len(kotIDs))
	}
	f.notifier.events = nil

	kitchen := kitchenActor()

	// First ticket starts cooking: the order follows immediately.
	kot := advanceKOT(t, f, kitchen, kotIDs[0], models.KOTStatusPreparing)
	if kot.Status != string(models.KOTStatusPreparing) {
		t.Errorf("ticket status = %q, want preparing", kot.Status)
	}
	if got := f.orders.orders[order.ID].Status; got != string(models.OrderStatusPreparing) {
		t.Errorf("order status = %q, want preparing", got)
	}
	if got := len(f.notifier.eventsOfType(notifications.EventKOTStatusUpdate)); got != 1 {
		t.Errorf("kot_status_update events = %d, want 1", got)
	}
	if got := len(f.notifier.eventsOfType(notifications.EventOrderStatusUpdate)); got != 1 {
		t.Errorf("order_status_update events = %d, want 1", got)
	}

	// One ticket ready while the other cooks: order stays preparing and no
	// extra order event goes out.
	advanceKOT(t, f, kitchen, kotIDs[0], models.KOTStatusReady)
	if got := f.orders.orders[order.ID].Status; got != string(models.OrderStatusPreparing) {
		t.Errorf("order status = %q, want preparing", got)
	}
	if got := len(f.notifier.eventsOfType(notifications.EventOrderStatusUpdate)); got != 1 {
		t.Errorf("order_status_update events = %d, want 1", got)
	}

	// Second ticket catches up: the whole order becomes ready.
	advanceKOT(t, f, kitchen, kotIDs[1], models.KOTStatusPreparing)
	advanceKOT(t, f, kitchen, kotIDs[1], models.KOTStatusReady)
	if got := f.orders.orders[order.ID].Status; got != string(models.OrderStatusReady) {
		t.Errorf("order status = %q, want ready", got)
	}

	// Both served: order completed and the table released.
	advanceKOT(t, f, kitchen, kotIDs[0], models.KOTStatusCompleted)
	advanceKOT(t, f, kitchen, kotIDs[1], models.KOTStatusCompleted)
	if got := f.orders.orders[order.ID].Status; got != string(models.OrderStatusCompleted) {
		t.Errorf("order status = %q, want completed", got)
	}
	if got := f.tables.tableStatus(1); got != string(models.TableStatusAvailable) {
		t.Errorf("table status = %q, want available", got)
	}
}

func TestUpdateKOTStatusRoles(t *testing.T) {
	f := newFixture(t)
	order := createDineInOrder(t, f)
	kotIDs := orderKOTIDs(t, f, order.ID)

	// Waiters never work tickets.
	if _, err := f.kotService.UpdateKOTStatus(waiterActor(), kotIDs[0], UpdateKOTStatusRequest{Status: string(models.KOTStatusPreparing)}); !errors.Is(err, ErrForbidden) {
		t.Errorf("waiter advancing ticket: error = %v, want %v", err, ErrForbidden)
	}

	// Kitchen staff advance but cannot cancel.
	if _, err := f.kotService.UpdateKOTStatus(kitchenActor(), kotIDs[0], UpdateKOTStatusRequest{Status: string(models.KOTStatusCancelled)}); !errors.Is(err, ErrForbidden) {
		t.Errorf("kitchen cancelling ticket: error = %v, want %v", err, ErrForbidden)
	}

	// A manager can.
	kot, err := f.kotService.UpdateKOTStatus(managerActor(), kotIDs[0], UpdateKOTStatusRequest{Status: string(models.KOTStatusCancelled)})
	if err != nil {
		t.Fatalf("manager cancelling ticket: %v", err)
	}
	if kot.Status != string(models.KOTStatusCancelled) {
		t.Errorf("ticket status = %q, want cancelled", kot.Status)
	}
}

func TestUpdateKOTStatusValidation(t *testing.T) {
	f := newFixture(t)
	order := createDineInOrder(t, f)
	kotIDs := orderKOTIDs(t, f, order.ID)

	if _, err := f.kotService.UpdateKOTStatus(kitchenActor(), kotIDs[0], UpdateKOTStatusRequest{Status: "plated"}); !errors.Is(err, ErrValidation) {
		t.Errorf("invalid status: error = %v, want %v", err, ErrValidation)
	}
	if _, err := f.kotService.UpdateKOTStatus(kitchenActor(), kotIDs[0], UpdateKOTStatusRequest{Status: string(models.KOTStatusCompleted)}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending to completed: error = %v, want %v", err, ErrInvalidTransition)
	}
	if _, err := f.kotService.UpdateKOTStatus(kitchenActor(), 999, UpdateKOTStatusRequest{Status: string(models.KOTStatusPreparing)}); !errors.Is(err, ErrKOTNotFound) {
		t.Errorf("unknown ticket: error = %v, want %v", err, ErrKOTNotFound)
	}

	foreign := Actor{UserID: 31, Role: models.RoleKitchen, OutletIDs: []int64{2}}
	if _, err := f.kotService.UpdateKOTStatus(foreign, kotIDs[0], UpdateKOTStatusRequest{Status: string(models.KOTStatusPreparing)}); !errors.Is(err, ErrKOTNotFound) {
		t.Errorf("foreign actor: error = %v, want %v", err, ErrKOTNotFound)
	}
}

func TestListKOTs(t *testing.T) {
	f := newFixture(t)
	order := createDineInOrder(t, f)
	kotIDs := orderKOTIDs(t, f, order.ID)
	advanceKOT(t, f, kitchenActor(), kotIDs[0], models.KOTStatusPreparing)

	kots, err := f.kotService.ListKOTs(kitchenActor(), models.KOTFilters{OutletID: 1})
	if err != nil {
		t.Fatalf("ListKOTs() error = %v", err)
	}
	if len(kots) != 2 {
		t.Errorf("len(kots) = %d, want 2", len(kots))
	}

	preparing := string(models.KOTStatusPreparing)
	kots, err = f.kotService.ListKOTs(kitchenActor(), models.KOTFilters{OutletID: 1, Status: &preparing})
	if err != nil {
		t.Fatalf("ListKOTs() with filter error = %v", err)
	}
	if len(kots) != 1 {
		t.Errorf("len(kots) = %d, want 1", len(kots))
	}

	if _, err := f.kotService.ListKOTs(kitchenActor(), models.KOTFilters{OutletID: 2}); !errors.Is(err, ErrForbidden) {
		t.Errorf("ListKOTs() outside scope: error = %v, want %v", err, ErrForbidden)
	}
}
