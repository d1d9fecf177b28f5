package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"

	"github.com/lib/pq"
)

// OutletRepository defines the interface for chain and outlet database operations.
type OutletRepository interface {
	// Chain methods
	CreateChain(executor SQLExecutor, chain *models.RestaurantChain) (int64, error)
	GetChainByID(chainID int64) (*models.RestaurantChain, error)
	GetChainsByOwner(ownerID int64) ([]models.RestaurantChain, error)
	UpdateChain(executor SQLExecutor, chain *models.RestaurantChain) error
	DeleteChain(executor SQLExecutor, chainID int64) error

	// Outlet methods
	CreateOutlet(executor SQLExecutor, outlet *models.RestaurantOutlet) (int64, error)
	GetOutletByID(outletID int64) (*models.RestaurantOutlet, error)
	GetOutletsByChain(chainID int64) ([]models.RestaurantOutlet, error)
	UpdateOutlet(executor SQLExecutor, outlet *models.RestaurantOutlet) error
	OutletExists(outletID int64) (bool, error)
	ListOutletIDsByOwner(ownerID int64) ([]int64, error)
}

type outletRepository struct {
	db *sql.DB
}

// NewOutletRepository creates a new instance of OutletRepository.
func NewOutletRepository(db *sql.DB) OutletRepository {
	return &outletRepository{db: db}
}

// --- Chain Methods ---

func (r *outletRepository) CreateChain(executor SQLExecutor, chain *models.RestaurantChain) (int64, error) {
	query := `INSERT INTO restaurant_chains (name, owner_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	now := time.Now()
	err := executor.QueryRow(query, chain.Name, chain.OwnerID, now, now).Scan(&chain.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating chain: %v", ErrDatabaseError, err)
	}
	return chain.ID, nil
}

func (r *outletRepository) GetChainByID(chainID int64) (*models.RestaurantChain, error) {
	chain := &models.RestaurantChain{}
	query := `SELECT id, name, owner_id, created_at, updated_at FROM restaurant_chains WHERE id = $1`
	err := r.db.QueryRow(query, chainID).Scan(
		&chain.ID, &chain.Name, &chain.OwnerID, &chain.CreatedAt, &chain.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting chain by ID %d: %v", ErrDatabaseError, chainID, err)
	}
	return chain, nil
}

func (r *outletRepository) GetChainsByOwner(ownerID int64) ([]models.RestaurantChain, error) {
	chains := []models.RestaurantChain{}
	query := `SELECT id, name, owner_id, created_at, updated_at FROM restaurant_chains WHERE owner_id = $1 ORDER BY id`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chains for owner %d: %v", ErrDatabaseError, ownerID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.RestaurantChain
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning chain: %v", ErrDatabaseError, err)
		}
		chains = append(chains, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating chain rows: %v", ErrDatabaseError, err)
	}
	return chains, nil
}

func (r *outletRepository) UpdateChain(executor SQLExecutor, chain *models.RestaurantChain) error {
	query := `UPDATE restaurant_chains SET name = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, chain.Name, time.Now(), chain.ID)
	if err != nil {
		return fmt.Errorf("%w: updating chain ID %d: %v", ErrDatabaseError, chain.ID, err)
	}
	return requireRowsAffected(result, "chain status update")
}

func (r *outletRepository) DeleteChain(executor SQLExecutor, chainID int64) error {
	result, err := executor.Exec(`DELETE FROM restaurant_chains WHERE id = $1`, chainID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: chain %d still has outlets (constraint: %s)", ErrDatabaseError, chainID, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting chain ID %d: %v", ErrDatabaseError, chainID, err)
	}
	return requireRowsAffected(result, "chain delete")
}

// --- Outlet Methods ---

const outletColumns = `id, chain_id, name, address, city, state, postal_code, country, phone, email, status, created_at, updated_at`

func (r *outletRepository) CreateOutlet(executor SQLExecutor, outlet *models.RestaurantOutlet) (int64, error) {
	query := `INSERT INTO restaurant_outlets
	            (chain_id, name, address, city, state, postal_code, country, phone, email, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`
	now := time.Now()
	if outlet.Status == "" {
		outlet.Status = "active"
	}
	err := executor.QueryRow(query,
		outlet.ChainID, outlet.Name, outlet.Address, outlet.City, outlet.State,
		outlet.PostalCode, outlet.Country, outlet.Phone, outlet.Email, outlet.Status,
		now, now,
	).Scan(&outlet.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating outlet (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating outlet: %v", ErrDatabaseError, err)
	}
	return outlet.ID, nil
}

func (r *outletRepository) GetOutletByID(outletID int64) (*models.RestaurantOutlet, error) {
	outlet := &models.RestaurantOutlet{}
	query := `SELECT ` + outletColumns + ` FROM restaurant_outlets WHERE id = $1`
	err := r.db.QueryRow(query, outletID).Scan(
		&outlet.ID, &outlet.ChainID, &outlet.Name, &outlet.Address, &outlet.City, &outlet.State,
		&outlet.PostalCode, &outlet.Country, &outlet.Phone, &outlet.Email, &outlet.Status,
		&outlet.CreatedAt, &outlet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting outlet by ID %d: %v", ErrDatabaseError, outletID, err)
	}
	return outlet, nil
}

func (r *outletRepository) GetOutletsByChain(chainID int64) ([]models.RestaurantOutlet, error) {
	outlets := []models.RestaurantOutlet{}
	query := `SELECT ` + outletColumns + ` FROM restaurant_outlets WHERE chain_id = $1 ORDER BY id`
	rows, err := r.db.Query(query, chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying outlets for chain %d: %v", ErrDatabaseError, chainID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.RestaurantOutlet
		err := rows.Scan(
			&o.ID, &o.ChainID, &o.Name, &o.Address, &o.City, &o.State,
			&o.PostalCode, &o.Country, &o.Phone, &o.Email, &o.Status,
			&o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning outlet: %v", ErrDatabaseError, err)
		}
		outlets = append(outlets, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating outlet rows: %v", ErrDatabaseError, err)
	}
	return outlets, nil
}

func (r *outletRepository) UpdateOutlet(executor SQLExecutor, outlet *models.RestaurantOutlet) error {
	query := `UPDATE restaurant_outlets
	          SET name = $1, address = $2, city = $3, state = $4, postal_code = $5,
	              country = $6, phone = $7, email = $8, status = $9, updated_at = $10
	          WHERE id = $11`
	result, err := executor.Exec(query,
		outlet.Name, outlet.Address, outlet.City, outlet.State, outlet.PostalCode,
		outlet.Country, outlet.Phone, outlet.Email, outlet.Status, time.Now(), outlet.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating outlet ID %d: %v", ErrDatabaseError, outlet.ID, err)
	}
	return requireRowsAffected(result, "outlet update")
}

func (r *outletRepository) OutletExists(outletID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM restaurant_outlets WHERE id = $1)`, outletID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking outlet %d existence: %v", ErrDatabaseError, outletID, err)
	}
	return exists, nil
}

func (r *outletRepository) ListOutletIDsByOwner(ownerID int64) ([]int64, error) {
	query := `SELECT ro.id
	          FROM restaurant_outlets ro
	          JOIN restaurant_chains rc ON ro.chain_id = rc.id
	          WHERE rc.owner_id = $1
	          ORDER BY ro.id`
	rows, err := r.db.Query(query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying outlet ids for owner %d: %v", ErrDatabaseError, ownerID, err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning outlet id: %v", ErrDatabaseError, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating outlet id rows: %v", ErrDatabaseError, err)
	}
	return ids, nil
}

// requireRowsAffected maps a zero-row result to ErrNotFound.
func requireRowsAffected(result sql.Result, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s: %v", ErrDatabaseError, op, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
