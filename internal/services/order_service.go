package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/notifications"
	"github.com/harimoradiya/rmspos/internal/repositories"
	"github.com/harimoradiya/rmspos/pkg/utils"
)

// Order workflow errors.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotEditable  = errors.New("order can no longer be modified")
	ErrInvalidTransition = errors.New("illegal status transition")
)

// OrderItemRequest is one requested order line.
type OrderItemRequest struct {
	MenuItemID int64  `json:"menu_item_id" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
	Notes      string `json:"notes"`
}

// CreateOrderRequest defines the expected JSON body for order creation.
type CreateOrderRequest struct {
	OutletID  int64              `json:"outlet_id" binding:"required"`
	OrderType string             `json:"order_type" binding:"required"`
	TableID   *int64             `json:"table_id"`
	Items     []OrderItemRequest `json:"items" binding:"required,dive"`
}

// UpdateOrderStatusRequest defines the expected JSON body for status updates.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderService defines the interface for the order workflow.
type OrderService interface {
	CreateOrder(actor Actor, req CreateOrderRequest) (*models.Order, error)
	GetOrderByID(actor Actor, orderID int64) (*models.Order, error)
	GetOrderByToken(actor Actor, tokenNumber string) (*models.Order, error)
	GetOrders(actor Actor, filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrderStatus(actor Actor, orderID int64, req UpdateOrderStatusRequest) (*models.Order, error)
	AddItemsToOrder(actor Actor, orderID int64, items []OrderItemRequest) (*models.Order, error)
}

type orderService struct {
	orderRepo  repositories.OrderRepository
	tableRepo  repositories.TableRepository
	menuRepo   repositories.MenuRepository
	outletRepo repositories.OutletRepository
	notifier   Notifier
	db         *sql.DB
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	tableRepo repositories.TableRepository,
	menuRepo repositories.MenuRepository,
	outletRepo repositories.OutletRepository,
	notifier Notifier,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo:  orderRepo,
		tableRepo:  tableRepo,
		menuRepo:   menuRepo,
		outletRepo: outletRepo,
		notifier:   notifier,
		db:         db,
	}
}

// CreateOrder atomically creates an order with its items and one kitchen
// ticket per item. Dine-in orders claim their table under a row lock so
// two concurrent orders can never share one. Notifications go out only
// after the transaction commits.
func (s *orderService) CreateOrder(actor Actor, req CreateOrderRequest) (*models.Order, error) {
	if err := requireScope(actor, req.OutletID); err != nil {
		return nil, err
	}
	if !models.IsValidOrderType(req.OrderType) {
		return nil, fmt.Errorf("%w: invalid order type %q", ErrValidation, req.OrderType)
	}
	if req.OrderType == string(models.OrderTypeDineIn) && req.TableID == nil {
		return nil, fmt.Errorf("%w: dine-in orders require a table", ErrValidation)
	}
	if req.OrderType != string(models.OrderTypeDineIn) && req.TableID != nil {
		return nil, fmt.Errorf("%w: only dine-in orders may reference a table", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: an order requires at least one item", ErrValidation)
	}

	outlet, err := s.outletRepo.GetOutletByID(req.OutletID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOutletNotFound
		}
		return nil, fmt.Errorf("getting outlet: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if req.TableID != nil {
		table, tableOutletID, err := s.tableRepo.GetTableForUpdate(tx, *req.TableID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrTableNotFound
			}
			return nil, fmt.Errorf("locking table: %w", err)
		}
		if tableOutletID != req.OutletID {
			return nil, ErrTableNotFound
		}
		if table.Status != string(models.TableStatusAvailable) {
			return nil, fmt.Errorf("%w: table is %s", ErrTableNotAvailable, table.Status)
		}
	}

	latest, err := s.orderRepo.LatestTokenNumber(tx, req.OutletID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("getting latest token number: %w", err)
	}

	order := &models.Order{
		TokenNumber: nextScopedNumber(latest, req.OutletID, tokenTag),
		OutletID:    req.OutletID,
		TableID:     req.TableID,
		OrderType:   req.OrderType,
		Status:      string(models.OrderStatusPending),
	}
	if _, err := s.orderRepo.CreateOrder(tx, order); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: token number collision, retry the order", ErrConflict)
		}
		return nil, fmt.Errorf("creating order: %w", err)
	}

	amounts, events, err := s.addItemsTx(tx, order, outlet, req.Items)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateOrderTotal(tx, order.ID, utils.SumMoney(amounts), time.Now()); err != nil {
		return nil, fmt.Errorf("setting order total: %w", err)
	}
	if req.TableID != nil {
		if err := s.tableRepo.UpdateTableStatus(tx, *req.TableID, string(models.TableStatusOccupied), time.Now()); err != nil {
			return nil, fmt.Errorf("claiming table: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	s.publish(events)
	return s.loadOrder(order.ID)
}

// UpdateOrderStatus moves an order along its status adjacency and keeps the
// claimed table in step for dine-in orders.
func (s *orderService) UpdateOrderStatus(actor Actor, orderID int64, req UpdateOrderStatusRequest) (*models.Order, error) {
	if !models.IsValidOrderStatus(req.Status) {
		return nil, fmt.Errorf("%w: invalid order status %q", ErrValidation, req.Status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderByIDForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("locking order: %w", err)
	}
	if !actor.CanAccessOutlet(order.OutletID) {
		return nil, ErrOrderNotFound
	}
	if !models.CanTransitionOrder(models.OrderStatus(order.Status), models.OrderStatus(req.Status)) {
		return nil, fmt.Errorf("%w: order cannot go from %s to %s", ErrInvalidTransition, order.Status, req.Status)
	}

	if err := s.orderRepo.UpdateOrderStatus(tx, orderID, req.Status, time.Now()); err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	if err := s.syncTableForOrder(tx, order, models.OrderStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	event := notifications.NewEvent(notifications.EventOrderStatusUpdate, order.OutletID)
	event.OrderID = order.ID
	event.Status = req.Status
	s.publish([]notifications.Event{event})

	return s.loadOrder(orderID)
}

// AddItemsToOrder appends items to an order that is still in the kitchen.
// Each appended item gets its own ticket, and the cached total grows by
// the appended lines.
func (s *orderService) AddItemsToOrder(actor Actor, orderID int64, items []OrderItemRequest) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderByIDForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("locking order: %w", err)
	}
	if !actor.CanAccessOutlet(order.OutletID) {
		return nil, ErrOrderNotFound
	}
	switch models.OrderStatus(order.Status) {
	case models.OrderStatusPending, models.OrderStatusPreparing:
	default:
		return nil, fmt.Errorf("%w: order is %s", ErrOrderNotEditable, order.Status)
	}

	outlet, err := s.outletRepo.GetOutletByID(order.OutletID)
	if err != nil {
		return nil, fmt.Errorf("getting outlet: %w", err)
	}

	amounts, events, err := s.addItemsTx(tx, order, outlet, items)
	if err != nil {
		return nil, err
	}

	total := utils.SumMoney(append([]float64{order.TotalAmount}, amounts...))
	if err := s.orderRepo.UpdateOrderTotal(tx, order.ID, total, time.Now()); err != nil {
		return nil, fmt.Errorf("updating order total: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	s.publish(events)
	return s.loadOrder(orderID)
}

func (s *orderService) GetOrderByID(actor Actor, orderID int64) (*models.Order, error) {
	order, err := s.loadOrder(orderID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessOutlet(order.OutletID) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) GetOrderByToken(actor Actor, tokenNumber string) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByToken(tokenNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order by token: %w", err)
	}
	if !actor.CanAccessOutlet(order.OutletID) {
		return nil, ErrOrderNotFound
	}
	items, err := s.orderRepo.GetOrderItemsByOrderID(order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (s *orderService) GetOrders(actor Actor, filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.OutletID == nil {
		return nil, 0, fmt.Errorf("%w: outlet_id filter is required", ErrValidation)
	}
	if err := requireScope(actor, *filters.OutletID); err != nil {
		return nil, 0, err
	}
	if filters.Status != nil && *filters.Status != "" && !models.IsValidOrderStatus(*filters.Status) {
		return nil, 0, fmt.Errorf("%w: invalid order status %q", ErrValidation, *filters.Status)
	}
	return s.orderRepo.GetOrders(filters)
}

// addItemsTx creates order items and their tickets inside the caller's
// transaction. Every menu item must be available, its category active, and
// the category sellable at the order's outlet: either outlet-scoped to it
// or chain-scoped to the outlet's chain.
func (s *orderService) addItemsTx(tx repositories.SQLExecutor, order *models.Order, outlet *models.RestaurantOutlet, items []OrderItemRequest) ([]float64, []notifications.Event, error) {
	amounts := make([]float64, 0, len(items))
	events := make([]notifications.Event, 0, len(items))

	for _, line := range items {
		if line.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
		}

		menuItem, category, err := s.menuRepo.GetItemWithScope(tx, line.MenuItemID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, fmt.Errorf("%w: menu item %d", ErrMenuItemNotFound, line.MenuItemID)
			}
			return nil, nil, fmt.Errorf("getting menu item: %w", err)
		}
		if !menuItem.IsAvailable || !category.IsActive {
			return nil, nil, fmt.Errorf("%w: menu item %d is not available", ErrMenuItemNotFound, line.MenuItemID)
		}
		if !categorySellableAt(category, outlet) {
			return nil, nil, fmt.Errorf("%w: menu item %d is not sold at outlet %d", ErrMenuItemNotFound, line.MenuItemID, outlet.ID)
		}

		orderItem := &models.OrderItem{
			OrderID:    order.ID,
			MenuItemID: menuItem.ID,
			Quantity:   line.Quantity,
			Price:      menuItem.Price,
			Notes:      utils.NewNullString(line.Notes),
		}
		if _, err := s.orderRepo.CreateOrderItem(tx, orderItem); err != nil {
			return nil, nil, fmt.Errorf("creating order item: %w", err)
		}

		kot := &models.KOT{
			OrderItemID: orderItem.ID,
			Status:      string(models.KOTStatusPending),
		}
		if _, err := s.orderRepo.CreateKOT(tx, kot); err != nil {
			return nil, nil, fmt.Errorf("creating kitchen ticket: %w", err)
		}

		amounts = append(amounts, utils.RoundMoney(menuItem.Price*float64(line.Quantity)))

		event := notifications.NewEvent(notifications.EventNewKOT, order.OutletID)
		event.OrderID = order.ID
		event.KOTID = kot.ID
		event.Status = kot.Status
		event.ItemName = menuItem.Name
		event.Quantity = line.Quantity
		event.Notes = line.Notes
		events = append(events, event)
	}
	return amounts, events, nil
}

// syncTableForOrder keeps a dine-in order's table in step with the order:
// released on completion or cancellation, held otherwise.
func (s *orderService) syncTableForOrder(tx repositories.SQLExecutor, order *models.Order, status models.OrderStatus) error {
	if order.TableID == nil {
		return nil
	}
	tableStatus := models.TableStatusOccupied
	if status == models.OrderStatusCompleted || status == models.OrderStatusCancelled {
		tableStatus = models.TableStatusAvailable
	}
	if err := s.tableRepo.UpdateTableStatus(tx, *order.TableID, string(tableStatus), time.Now()); err != nil {
		return fmt.Errorf("syncing table status: %w", err)
	}
	return nil
}

// publish broadcasts events post-commit. Nothing here can fail the caller.
func (s *orderService) publish(events []notifications.Event) {
	if s.notifier == nil {
		return
	}
	for _, event := range events {
		s.notifier.Broadcast(event.OutletID, event)
	}
}

func (s *orderService) loadOrder(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("getting order: %w", err)
	}
	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// categorySellableAt reports whether a category's catalog is sold at an
// outlet.
func categorySellableAt(category *models.MenuCategory, outlet *models.RestaurantOutlet) bool {
	switch models.MenuScope(category.Scope) {
	case models.MenuScopeOutlet:
		return category.OutletID != nil && *category.OutletID == outlet.ID
	case models.MenuScopeChain:
		return category.ChainID != nil && *category.ChainID == outlet.ChainID
	default:
		return false
	}
}
