package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"

	"github.com/lib/pq"
)

// TableRepository defines the interface for area and table database operations.
type TableRepository interface {
	// Area methods
	CreateArea(executor SQLExecutor, area *models.Area) (int64, error)
	GetAreaByID(areaID int64) (*models.Area, error)
	GetAreasByOutlet(outletID int64) ([]models.Area, error)
	UpdateArea(executor SQLExecutor, area *models.Area) error
	DeleteArea(executor SQLExecutor, areaID int64) error
	CountTablesInArea(areaID int64) (int, error)

	// Table methods
	CreateTable(executor SQLExecutor, table *models.Table) (int64, error)
	GetTableByID(tableID int64) (*models.Table, int64, error) // table, owning outlet id
	GetTablesByOutlet(outletID int64) ([]models.Table, error)
	UpdateTable(executor SQLExecutor, table *models.Table) error
	DeleteTable(executor SQLExecutor, tableID int64) error

	// GetTableForUpdate locks the table row for the duration of the
	// surrounding transaction and returns the table with its outlet id.
	GetTableForUpdate(executor SQLExecutor, tableID int64) (*models.Table, int64, error)
	UpdateTableStatus(executor SQLExecutor, tableID int64, status string, updatedAt time.Time) error
}

type tableRepository struct {
	db *sql.DB
}

// NewTableRepository creates a new instance of TableRepository.
func NewTableRepository(db *sql.DB) TableRepository {
	return &tableRepository{db: db}
}

// --- Area Methods ---

func (r *tableRepository) CreateArea(executor SQLExecutor, area *models.Area) (int64, error) {
	query := `INSERT INTO areas (name, outlet_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query, area.Name, area.OutletID, true, now, now).Scan(&area.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating area (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating area: %v", ErrDatabaseError, err)
	}
	return area.ID, nil
}

func (r *tableRepository) GetAreaByID(areaID int64) (*models.Area, error) {
	area := &models.Area{}
	query := `SELECT id, name, outlet_id, is_active, created_at, updated_at FROM areas WHERE id = $1`
	err := r.db.QueryRow(query, areaID).Scan(
		&area.ID, &area.Name, &area.OutletID, &area.IsActive, &area.CreatedAt, &area.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting area by ID %d: %v", ErrDatabaseError, areaID, err)
	}
	return area, nil
}

func (r *tableRepository) GetAreasByOutlet(outletID int64) ([]models.Area, error) {
	areas := []models.Area{}
	query := `SELECT id, name, outlet_id, is_active, created_at, updated_at FROM areas WHERE outlet_id = $1 ORDER BY id`
	rows, err := r.db.Query(query, outletID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying areas for outlet %d: %v", ErrDatabaseError, outletID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.OutletID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning area: %v", ErrDatabaseError, err)
		}
		areas = append(areas, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating area rows: %v", ErrDatabaseError, err)
	}
	return areas, nil
}

func (r *tableRepository) UpdateArea(executor SQLExecutor, area *models.Area) error {
	query := `UPDATE areas SET name = $1, is_active = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, area.Name, area.IsActive, time.Now(), area.ID)
	if err != nil {
		return fmt.Errorf("%w: updating area ID %d: %v", ErrDatabaseError, area.ID, err)
	}
	return requireRowsAffected(result, "area update")
}

func (r *tableRepository) DeleteArea(executor SQLExecutor, areaID int64) error {
	result, err := executor.Exec(`DELETE FROM areas WHERE id = $1`, areaID)
	if err != nil {
		return fmt.Errorf("%w: deleting area ID %d: %v", ErrDatabaseError, areaID, err)
	}
	return requireRowsAffected(result, "area delete")
}

func (r *tableRepository) CountTablesInArea(areaID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM tables WHERE area_id = $1`, areaID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting tables in area %d: %v", ErrDatabaseError, areaID, err)
	}
	return count, nil
}

// --- Table Methods ---

func (r *tableRepository) CreateTable(executor SQLExecutor, table *models.Table) (int64, error) {
	query := `INSERT INTO tables (name, capacity, status, area_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	now := time.Now()
	if table.Status == "" {
		table.Status = string(models.TableStatusAvailable)
	}
	err := executor.QueryRow(query, table.Name, table.Capacity, table.Status, table.AreaID, now, now).Scan(&table.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating table (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating table: %v", ErrDatabaseError, err)
	}
	return table.ID, nil
}

const tableSelect = `
	SELECT t.id, t.name, t.capacity, t.status, t.area_id, t.created_at, t.updated_at, a.outlet_id
	FROM tables t
	JOIN areas a ON t.area_id = a.id`

func scanTableRow(row *sql.Row) (*models.Table, int64, error) {
	table := &models.Table{}
	var outletID int64
	err := row.Scan(
		&table.ID, &table.Name, &table.Capacity, &table.Status, &table.AreaID,
		&table.CreatedAt, &table.UpdatedAt, &outletID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: scanning table: %v", ErrDatabaseError, err)
	}
	return table, outletID, nil
}

func (r *tableRepository) GetTableByID(tableID int64) (*models.Table, int64, error) {
	return scanTableRow(r.db.QueryRow(tableSelect+` WHERE t.id = $1`, tableID))
}

// GetTableForUpdate locks the table row so two concurrent order creations
// cannot both claim it. The join partner is read without a lock.
func (r *tableRepository) GetTableForUpdate(executor SQLExecutor, tableID int64) (*models.Table, int64, error) {
	return scanTableRow(executor.QueryRow(tableSelect+` WHERE t.id = $1 FOR UPDATE OF t`, tableID))
}

func (r *tableRepository) GetTablesByOutlet(outletID int64) ([]models.Table, error) {
	tables := []models.Table{}
	query := tableSelect + ` WHERE a.outlet_id = $1 ORDER BY t.id`
	rows, err := r.db.Query(query, outletID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tables for outlet %d: %v", ErrDatabaseError, outletID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Table
		var outlet int64
		err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.Status, &t.AreaID, &t.CreatedAt, &t.UpdatedAt, &outlet)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning table: %v", ErrDatabaseError, err)
		}
		tables = append(tables, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating table rows: %v", ErrDatabaseError, err)
	}
	return tables, nil
}

func (r *tableRepository) UpdateTable(executor SQLExecutor, table *models.Table) error {
	query := `UPDATE tables SET name = $1, capacity = $2, status = $3, area_id = $4, updated_at = $5 WHERE id = $6`
	result, err := executor.Exec(query, table.Name, table.Capacity, table.Status, table.AreaID, time.Now(), table.ID)
	if err != nil {
		return fmt.Errorf("%w: updating table ID %d: %v", ErrDatabaseError, table.ID, err)
	}
	return requireRowsAffected(result, "table update")
}

func (r *tableRepository) DeleteTable(executor SQLExecutor, tableID int64) error {
	result, err := executor.Exec(`DELETE FROM tables WHERE id = $1`, tableID)
	if err != nil {
		return fmt.Errorf("%w: deleting table ID %d: %v", ErrDatabaseError, tableID, err)
	}
	return requireRowsAffected(result, "table delete")
}

func (r *tableRepository) UpdateTableStatus(executor SQLExecutor, tableID int64, status string, updatedAt time.Time) error {
	query := `UPDATE tables SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, status, updatedAt, tableID)
	if err != nil {
		return fmt.Errorf("%w: updating table status for ID %d: %v", ErrDatabaseError, tableID, err)
	}
	return requireRowsAffected(result, "table status update")
}
