package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/notifications"
	"github.com/harimoradiya/rmspos/internal/repositories"
)

// Kitchen ticket errors.
var ErrKOTNotFound = errors.New("kitchen ticket not found")

// UpdateKOTStatusRequest defines the expected JSON body for ticket updates.
type UpdateKOTStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// KOTService defines the interface for the kitchen ticket workflow.
type KOTService interface {
	GetKOTByID(actor Actor, kotID int64) (*models.KOT, error)
	ListKOTs(actor Actor, filters models.KOTFilters) ([]models.KOT, error)
	UpdateKOTStatus(actor Actor, kotID int64, req UpdateKOTStatusRequest) (*models.KOT, error)
}

type kotService struct {
	orderRepo repositories.OrderRepository
	tableRepo repositories.TableRepository
	notifier  Notifier
	db        *sql.DB
}

// NewKOTService creates a new instance of KOTService.
func NewKOTService(orderRepo repositories.OrderRepository, tableRepo repositories.TableRepository, notifier Notifier, db *sql.DB) KOTService {
	return &kotService{orderRepo: orderRepo, tableRepo: tableRepo, notifier: notifier, db: db}
}

func (s *kotService) GetKOTByID(actor Actor, kotID int64) (*models.KOT, error) {
	kot, err := s.orderRepo.GetKOTByID(kotID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrKOTNotFound
		}
		return nil, fmt.Errorf("getting kitchen ticket: %w", err)
	}
	if !actor.CanAccessOutlet(kot.OutletID) {
		return nil, ErrKOTNotFound
	}
	return kot, nil
}

func (s *kotService) ListKOTs(actor Actor, filters models.KOTFilters) ([]models.KOT, error) {
	if err := requireScope(actor, filters.OutletID); err != nil {
		return nil, err
	}
	if filters.Status != nil && *filters.Status != "" && !models.IsValidKOTStatus(*filters.Status) {
		return nil, fmt.Errorf("%w: invalid ticket status %q", ErrValidation, *filters.Status)
	}
	return s.orderRepo.ListKOTs(filters)
}

// UpdateKOTStatus advances one ticket and re-derives the parent order's
// aggregate status from all of its tickets in the same transaction. Kitchen
// staff and above may advance tickets; cancelling one takes a manager.
func (s *kotService) UpdateKOTStatus(actor Actor, kotID int64, req UpdateKOTStatusRequest) (*models.KOT, error) {
	if err := requireRole(actor, kitchenOrAbove...); err != nil {
		return nil, err
	}
	if !models.IsValidKOTStatus(req.Status) {
		return nil, fmt.Errorf("%w: invalid ticket status %q", ErrValidation, req.Status)
	}
	if req.Status == string(models.KOTStatusCancelled) {
		if err := requireRole(actor, managerOrAbove...); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	kot, err := s.orderRepo.GetKOTByIDForUpdate(tx, kotID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrKOTNotFound
		}
		return nil, fmt.Errorf("locking kitchen ticket: %w", err)
	}
	if !actor.CanAccessOutlet(kot.OutletID) {
		return nil, ErrKOTNotFound
	}
	if !models.CanTransitionKOT(models.KOTStatus(kot.Status), models.KOTStatus(req.Status)) {
		return nil, fmt.Errorf("%w: ticket cannot go from %s to %s", ErrInvalidTransition, kot.Status, req.Status)
	}

	if err := s.orderRepo.UpdateKOTStatus(tx, kotID, req.Status, time.Now()); err != nil {
		return nil, fmt.Errorf("updating ticket status: %w", err)
	}

	order, err := s.orderRepo.GetOrderByIDForUpdate(tx, kot.OrderID)
	if err != nil {
		return nil, fmt.Errorf("locking parent order: %w", err)
	}

	kots, err := s.orderRepo.GetKOTsByOrderID(tx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("listing order tickets: %w", err)
	}

	aggregate := deriveOrderStatus(models.OrderStatus(order.Status), kots)
	orderChanged := aggregate != models.OrderStatus(order.Status)
	if orderChanged {
		if err := s.orderRepo.UpdateOrderStatus(tx, order.ID, string(aggregate), time.Now()); err != nil {
			return nil, fmt.Errorf("updating aggregate order status: %w", err)
		}
		if order.TableID != nil {
			tableStatus := models.TableStatusOccupied
			if aggregate == models.OrderStatusCompleted || aggregate == models.OrderStatusCancelled {
				tableStatus = models.TableStatusAvailable
			}
			if err := s.tableRepo.UpdateTableStatus(tx, *order.TableID, string(tableStatus), time.Now()); err != nil {
				return nil, fmt.Errorf("syncing table status: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	if s.notifier != nil {
		event := notifications.NewEvent(notifications.EventKOTStatusUpdate, kot.OutletID)
		event.OrderID = kot.OrderID
		event.KOTID = kot.ID
		event.Status = req.Status
		event.ItemName = kot.ItemName
		event.Quantity = kot.Quantity
		if kot.Notes != nil {
			event.Notes = *kot.Notes
		}
		s.notifier.Broadcast(kot.OutletID, event)

		if orderChanged {
			orderEvent := notifications.NewEvent(notifications.EventOrderStatusUpdate, kot.OutletID)
			orderEvent.OrderID = order.ID
			orderEvent.Status = string(aggregate)
			s.notifier.Broadcast(kot.OutletID, orderEvent)
		}
	}

	updated, err := s.orderRepo.GetKOTByID(kotID)
	if err != nil {
		return nil, fmt.Errorf("reloading ticket: %w", err)
	}
	return updated, nil
}

// deriveOrderStatus computes the order status implied by its tickets, in
// priority order: every ticket completed, then every ticket ready, then
// any ticket preparing, then any ticket cancelled with the rest settled as
// cancelled or completed. When no rule applies the current status is kept.
func deriveOrderStatus(current models.OrderStatus, kots []models.KOT) models.OrderStatus {
	if len(kots) == 0 {
		return current
	}

	var completed, ready, cancelled, preparing int
	for _, k := range kots {
		switch models.KOTStatus(k.Status) {
		case models.KOTStatusCompleted:
			completed++
		case models.KOTStatusReady:
			ready++
		case models.KOTStatusCancelled:
			cancelled++
		case models.KOTStatusPreparing:
			preparing++
		}
	}

	total := len(kots)
	switch {
	case completed == total:
		return models.OrderStatusCompleted
	case ready == total:
		return models.OrderStatusReady
	case preparing > 0:
		return models.OrderStatusPreparing
	case cancelled > 0 && cancelled+completed == total:
		return models.OrderStatusCancelled
	default:
		return current
	}
}
