package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"

	"github.com/lib/pq"
)

// MenuRepository defines the interface for menu catalog database operations.
type MenuRepository interface {
	// Category methods
	CreateCategory(executor SQLExecutor, category *models.MenuCategory) (int64, error)
	GetCategoryByID(categoryID int64) (*models.MenuCategory, error)
	GetCategories(chainID, outletID *int64) ([]models.MenuCategory, error)
	UpdateCategory(executor SQLExecutor, category *models.MenuCategory) error
	DeleteCategory(executor SQLExecutor, categoryID int64) error

	// Item methods
	CreateItem(executor SQLExecutor, item *models.MenuItem) (int64, error)
	GetItemByID(itemID int64) (*models.MenuItem, error)
	GetItems(filters models.MenuItemFilters) ([]models.MenuItem, int, error)
	UpdateItem(executor SQLExecutor, item *models.MenuItem) error
	DeleteItem(executor SQLExecutor, itemID int64) error

	// GetItemWithScope returns the item together with its owning category's
	// scope so the order engine can verify the item is sellable at an outlet.
	GetItemWithScope(executor SQLExecutor, itemID int64) (*models.MenuItem, *models.MenuCategory, error)
}

type menuRepository struct {
	db *sql.DB
}

// NewMenuRepository creates a new instance of MenuRepository.
func NewMenuRepository(db *sql.DB) MenuRepository {
	return &menuRepository{db: db}
}

// --- Category Methods ---

const categoryColumns = `id, name, description, scope, chain_id, outlet_id, is_active, created_at, updated_at`

func (r *menuRepository) CreateCategory(executor SQLExecutor, category *models.MenuCategory) (int64, error) {
	query := `INSERT INTO menu_categories (name, description, scope, chain_id, outlet_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query,
		category.Name, category.Description, category.Scope, category.ChainID, category.OutletID,
		true, now, now,
	).Scan(&category.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating menu category (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating menu category: %v", ErrDatabaseError, err)
	}
	return category.ID, nil
}

func scanCategory(row *sql.Row) (*models.MenuCategory, error) {
	category := &models.MenuCategory{}
	err := row.Scan(
		&category.ID, &category.Name, &category.Description, &category.Scope,
		&category.ChainID, &category.OutletID, &category.IsActive,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning menu category: %v", ErrDatabaseError, err)
	}
	return category, nil
}

func (r *menuRepository) GetCategoryByID(categoryID int64) (*models.MenuCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM menu_categories WHERE id = $1`
	return scanCategory(r.db.QueryRow(query, categoryID))
}

func (r *menuRepository) GetCategories(chainID, outletID *int64) ([]models.MenuCategory, error) {
	categories := []models.MenuCategory{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + categoryColumns + ` FROM menu_categories`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if chainID != nil {
		conditions = append(conditions, fmt.Sprintf("chain_id = $%d", argCounter))
		args = append(args, *chainID)
		argCounter++
	}
	if outletID != nil {
		conditions = append(conditions, fmt.Sprintf("outlet_id = $%d", argCounter))
		args = append(args, *outletID)
		argCounter++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " OR "))
	}
	queryBuilder.WriteString(" ORDER BY id")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying menu categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.MenuCategory
		err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.Scope, &c.ChainID, &c.OutletID,
			&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning menu category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating menu category rows: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

func (r *menuRepository) UpdateCategory(executor SQLExecutor, category *models.MenuCategory) error {
	query := `UPDATE menu_categories SET name = $1, description = $2, is_active = $3, updated_at = $4 WHERE id = $5`
	result, err := executor.Exec(query, category.Name, category.Description, category.IsActive, time.Now(), category.ID)
	if err != nil {
		return fmt.Errorf("%w: updating menu category ID %d: %v", ErrDatabaseError, category.ID, err)
	}
	return requireRowsAffected(result, "menu category update")
}

func (r *menuRepository) DeleteCategory(executor SQLExecutor, categoryID int64) error {
	result, err := executor.Exec(`DELETE FROM menu_categories WHERE id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("%w: deleting menu category ID %d: %v", ErrDatabaseError, categoryID, err)
	}
	return requireRowsAffected(result, "menu category delete")
}

// --- Item Methods ---

const itemColumns = `id, name, description, price, category_id, is_available, created_at, updated_at`

func (r *menuRepository) CreateItem(executor SQLExecutor, item *models.MenuItem) (int64, error) {
	query := `INSERT INTO menu_items (name, description, price, category_id, is_available, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query,
		item.Name, item.Description, item.Price, item.CategoryID, item.IsAvailable, now, now,
	).Scan(&item.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating menu item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating menu item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func scanItem(row *sql.Row) (*models.MenuItem, error) {
	item := &models.MenuItem{}
	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.Price, &item.CategoryID,
		&item.IsAvailable, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning menu item: %v", ErrDatabaseError, err)
	}
	return item, nil
}

func (r *menuRepository) GetItemByID(itemID int64) (*models.MenuItem, error) {
	query := `SELECT ` + itemColumns + ` FROM menu_items WHERE id = $1`
	return scanItem(r.db.QueryRow(query, itemID))
}

func (r *menuRepository) GetItems(filters models.MenuItemFilters) ([]models.MenuItem, int, error) {
	items := []models.MenuItem{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT id, name, description, price, category_id, is_available, created_at, updated_at,
               COUNT(*) OVER() as total_count
        FROM menu_items
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argCounter))
		args = append(args, *filters.CategoryID)
		argCounter++
	}
	if filters.Available != nil {
		conditions = append(conditions, fmt.Sprintf("is_available = $%d", argCounter))
		args = append(args, *filters.Available)
		argCounter++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argCounter))
		args = append(args, "%"+*filters.Search+"%")
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY id")

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
		return nil, 0, fmt.Errorf("%w: querying menu items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var i models.MenuItem
		err := rows.Scan(
			&i.ID, &i.Name, &i.Description, &i.Price, &i.CategoryID,
			&i.IsAvailable, &i.CreatedAt, &i.UpdatedAt, &totalCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning menu item: %v", ErrDatabaseError, err)
		}
		items = append(items, i)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating menu item rows: %v", ErrDatabaseError, err)
	}
	return items, totalCount, nil
}

func (r *menuRepository) UpdateItem(executor SQLExecutor, item *models.MenuItem) error {
	query := `UPDATE menu_items
	          SET name = $1, description = $2, price = $3, is_available = $4, updated_at = $5
	          WHERE id = $6`
	result, err := executor.Exec(query, item.Name, item.Description, item.Price, item.IsAvailable, time.Now(), item.ID)
	if err != nil {
		return fmt.Errorf("%w: updating menu item ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	return requireRowsAffected(result, "menu item update")
}

func (r *menuRepository) DeleteItem(executor SQLExecutor, itemID int64) error {
	result, err := executor.Exec(`DELETE FROM menu_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("%w: deleting menu item ID %d: %v", ErrDatabaseError, itemID, err)
	}
	return requireRowsAffected(result, "menu item delete")
}

func (r *menuRepository) GetItemWithScope(executor SQLExecutor, itemID int64) (*models.MenuItem, *models.MenuCategory, error) {
	query := `
		SELECT mi.id, mi.name, mi.description, mi.price, mi.category_id, mi.is_available,
		       mi.created_at, mi.updated_at,
		       mc.id, mc.name, mc.description, mc.scope, mc.chain_id, mc.outlet_id, mc.is_active,
		       mc.created_at, mc.updated_at
		FROM menu_items mi
		JOIN menu_categories mc ON mi.category_id = mc.id
		WHERE mi.id = $1`

	item := &models.MenuItem{}
	category := &models.MenuCategory{}
	err := executor.QueryRow(query, itemID).Scan(
		&item.ID, &item.Name, &item.Description, &item.Price, &item.CategoryID,
		&item.IsAvailable, &item.CreatedAt, &item.UpdatedAt,
		&category.ID, &category.Name, &category.Description, &category.Scope,
		&category.ChainID, &category.OutletID, &category.IsActive,
		&category.CreatedAt, &category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("%w: getting menu item %d with scope: %v", ErrDatabaseError, itemID, err)
	}
	return item, category, nil
}
