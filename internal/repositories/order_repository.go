package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// OrderRepository defines the interface for order, order-item and KOT
// database operations.
type OrderRepository interface {
	// Order methods
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrderByIDForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error)
	GetOrderByToken(tokenNumber string) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error
	UpdateOrderTotal(executor SQLExecutor, orderID int64, total float64, updatedAt time.Time) error

	// LatestTokenNumber returns the most recent token number issued for an
	// outlet, or ErrNotFound when the outlet has no orders yet. Called
	// inside the inserting transaction; the unique index backs it up.
	LatestTokenNumber(executor SQLExecutor, outletID int64) (string, error)

	// OrderItem methods
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error)

	// KOT methods
	CreateKOT(executor SQLExecutor, kot *models.KOT) (int64, error)
	GetKOTByID(kotID int64) (*models.KOT, error)
	GetKOTByIDForUpdate(executor SQLExecutor, kotID int64) (*models.KOT, error)
	GetKOTsByOrderID(executor SQLExecutor, orderID int64) ([]models.KOT, error)
	UpdateKOTStatus(executor SQLExecutor, kotID int64, newStatus string, updatedAt time.Time) error
	ListKOTs(filters models.KOTFilters) ([]models.KOT, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
	            (token_number, outlet_id, table_id, order_type, status, total_amount, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		order.TokenNumber, order.OutletID, order.TableID, order.OrderType, order.Status,
		order.TotalAmount, order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return 0, fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
			case "23503":
				return 0, fmt.Errorf("%w: creating order (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
			}
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

const orderColumns = `id, token_number, outlet_id, table_id, order_type, status, total_amount, created_at, updated_at`

func scanOrder(row *sql.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID, &order.TokenNumber, &order.OutletID, &order.TableID, &order.OrderType,
		&order.Status, &order.TotalAmount, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRow(query, orderID))
}

func (r *orderRepository) GetOrderByIDForUpdate(executor SQLExecutor, orderID int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return scanOrder(executor.QueryRow(query, orderID))
}

func (r *orderRepository) GetOrderByToken(tokenNumber string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE token_number = $1`
	return scanOrder(r.db.QueryRow(query, tokenNumber))
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            o.id, o.token_number, o.outlet_id, o.table_id, o.order_type, o.status,
            o.total_amount, o.created_at, o.updated_at,
            t.name as table_name,
            COUNT(*) OVER() as total_count
        FROM orders o
        LEFT JOIN tables t ON o.table_id = t.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.OutletID != nil {
		conditions = append(conditions, fmt.Sprintf("o.outlet_id = $%d", argCounter))
		args = append(args, *filters.OutletID)
		argCounter++
	}
	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("o.table_id = $%d", argCounter))
		args = append(args, *filters.TableID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, parsedDate.Location())
			endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
			conditions = append(conditions, fmt.Sprintf("o.created_at BETWEEN $%d AND $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, endOfDay)
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		var tableName sql.NullString

		err := rows.Scan(
			&o.ID, &o.TokenNumber, &o.OutletID, &o.TableID, &o.OrderType, &o.Status,
			&o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
			&tableName,
			&totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}

		if o.TableID != nil && tableName.Valid {
			o.Table = &models.Table{ID: *o.TableID, Name: tableName.String}
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, newStatus, updatedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return requireRowsAffected(result, "order status update")
}

func (r *orderRepository) UpdateOrderTotal(executor SQLExecutor, orderID int64, total float64, updatedAt time.Time) error {
	query := `UPDATE orders SET total_amount = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, total, updatedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order total for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return requireRowsAffected(result, "order total update")
}

func (r *orderRepository) LatestTokenNumber(executor SQLExecutor, outletID int64) (string, error) {
	var token string
	query := `SELECT token_number FROM orders WHERE outlet_id = $1 ORDER BY id DESC LIMIT 1`
	err := executor.QueryRow(query, outletID).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: getting latest token for outlet %d: %v", ErrDatabaseError, outletID, err)
	}
	return token, nil
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items (order_id, menu_item_id, quantity, price, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		item.OrderID, item.MenuItemID, item.Quantity, item.Price, item.Notes,
		item.CreatedAt, item.UpdatedAt,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := `
		SELECT
		    oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.price, oi.notes,
		    oi.created_at, oi.updated_at,
		    mi.name as item_name,
		    k.id, k.status, k.created_at, k.updated_at
		FROM order_items oi
		JOIN menu_items mi ON oi.menu_item_id = mi.id
		LEFT JOIN kots k ON k.order_item_id = oi.id
		WHERE oi.order_id = $1
		ORDER BY oi.id`

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		var kotID sql.NullInt64
		var kotStatus sql.NullString
		var kotCreated, kotUpdated sql.NullTime

		err := rows.Scan(
			&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity, &item.Price, &item.Notes,
			&item.CreatedAt, &item.UpdatedAt,
			&item.ItemName,
			&kotID, &kotStatus, &kotCreated, &kotUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning order item for order ID %d: %v", ErrDatabaseError, orderID, err)
		}

		if kotID.Valid {
			item.KOT = &models.KOT{
				ID:          kotID.Int64,
				OrderItemID: item.ID,
				Status:      kotStatus.String,
				CreatedAt:   kotCreated.Time,
				UpdatedAt:   kotUpdated.Time,
			}
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

// --- KOT Methods ---

func (r *orderRepository) CreateKOT(executor SQLExecutor, kot *models.KOT) (int64, error) {
	query := `INSERT INTO kots (order_item_id, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	if kot.CreatedAt.IsZero() {
		kot.CreatedAt = time.Now()
	}
	if kot.UpdatedAt.IsZero() {
		kot.UpdatedAt = time.Now()
	}

	err := executor.QueryRow(query, kot.OrderItemID, kot.Status, kot.CreatedAt, kot.UpdatedAt).Scan(&kot.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return 0, fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
			case "23503":
				return 0, fmt.Errorf("%w: creating KOT (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
			}
		}
		return 0, fmt.Errorf("%w: creating KOT: %v", ErrDatabaseError, err)
	}
	return kot.ID, nil
}

const kotSelect = `
	SELECT k.id, k.order_item_id, k.status, k.created_at, k.updated_at,
	       oi.order_id, o.outlet_id, mi.name, oi.quantity, oi.notes
	FROM kots k
	JOIN order_items oi ON k.order_item_id = oi.id
	JOIN orders o ON oi.order_id = o.id
	JOIN menu_items mi ON oi.menu_item_id = mi.id`

func scanKOT(row *sql.Row) (*models.KOT, error) {
	kot := &models.KOT{}
	err := row.Scan(
		&kot.ID, &kot.OrderItemID, &kot.Status, &kot.CreatedAt, &kot.UpdatedAt,
		&kot.OrderID, &kot.OutletID, &kot.ItemName, &kot.Quantity, &kot.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning KOT: %v", ErrDatabaseError, err)
	}
	return kot, nil
}

func (r *orderRepository) GetKOTByID(kotID int64) (*models.KOT, error) {
	return scanKOT(r.db.QueryRow(kotSelect+` WHERE k.id = $1`, kotID))
}

func (r *orderRepository) GetKOTByIDForUpdate(executor SQLExecutor, kotID int64) (*models.KOT, error) {
	return scanKOT(executor.QueryRow(kotSelect+` WHERE k.id = $1 FOR UPDATE OF k`, kotID))
}

func (r *orderRepository) GetKOTsByOrderID(executor SQLExecutor, orderID int64) ([]models.KOT, error) {
	kots := []models.KOT{}
	rows, err := executor.Query(kotSelect+` WHERE oi.order_id = $1 ORDER BY k.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying KOTs for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var k models.KOT
		err := rows.Scan(
			&k.ID, &k.OrderItemID, &k.Status, &k.CreatedAt, &k.UpdatedAt,
			&k.OrderID, &k.OutletID, &k.ItemName, &k.Quantity, &k.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning KOT for order ID %d: %v", ErrDatabaseError, orderID, err)
		}
		kots = append(kots, k)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating KOT rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return kots, nil
}

func (r *orderRepository) UpdateKOTStatus(executor SQLExecutor, kotID int64, newStatus string, updatedAt time.Time) error {
	query := `UPDATE kots SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, newStatus, updatedAt, kotID)
	if err != nil {
		return fmt.Errorf("%w: updating KOT status for ID %d: %v", ErrDatabaseError, kotID, err)
	}
	return requireRowsAffected(result, "KOT status update")
}

func (r *orderRepository) ListKOTs(filters models.KOTFilters) ([]models.KOT, error) {
	kots := []models.KOT{}

	query := kotSelect + ` WHERE o.outlet_id = $1`
	args := []interface{}{filters.OutletID}
	if filters.Status != nil && *filters.Status != "" {
		query += ` AND k.status = $2`
		args = append(args, *filters.Status)
	}
	query += ` ORDER BY k.created_at`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying KOTs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var k models.KOT
		err := rows.Scan(
			&k.ID, &k.OrderItemID, &k.Status, &k.CreatedAt, &k.UpdatedAt,
			&k.OrderID, &k.OutletID, &k.ItemName, &k.Quantity, &k.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning KOT: %v", ErrDatabaseError, err)
		}
		kots = append(kots, k)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating KOT rows: %v", ErrDatabaseError, err)
	}
	return kots, nil
}
