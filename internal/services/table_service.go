package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/repositories"
)

// Area and table errors.
var (
	ErrAreaNotFound      = errors.New("area not found")
	ErrTableNotFound     = errors.New("table not found")
	ErrAreaHasTables     = errors.New("area still has tables")
	ErrTableInUse        = errors.New("table has an active order")
	ErrTableNotAvailable = errors.New("table is not available")
)

// CreateAreaRequest defines the expected JSON body for area creation.
type CreateAreaRequest struct {
	Name     string `json:"name" binding:"required"`
	OutletID int64  `json:"outlet_id" binding:"required"`
}

// UpdateAreaRequest defines the expected JSON body for area updates.
type UpdateAreaRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// CreateTableRequest defines the expected JSON body for table creation.
type CreateTableRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
	AreaID   int64  `json:"area_id" binding:"required"`
}

// UpdateTableRequest defines the expected JSON body for table updates.
type UpdateTableRequest struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
	AreaID   *int64  `json:"area_id"`
}

// TableService defines the interface for floor-plan management. Table
// status changes here are management actions; the order engine owns
// occupied/available flips during service.
type TableService interface {
	CreateArea(actor Actor, req CreateAreaRequest) (*models.Area, error)
	GetAreasByOutlet(actor Actor, outletID int64) ([]models.Area, error)
	UpdateArea(actor Actor, areaID int64, req UpdateAreaRequest) (*models.Area, error)
	DeleteArea(actor Actor, areaID int64, cascade bool) error

	CreateTable(actor Actor, req CreateTableRequest) (*models.Table, error)
	GetTableByID(actor Actor, tableID int64) (*models.Table, error)
	GetTablesByOutlet(actor Actor, outletID int64) ([]models.Table, error)
	UpdateTable(actor Actor, tableID int64, req UpdateTableRequest) (*models.Table, error)
	UpdateTableStatus(actor Actor, tableID int64, status string) (*models.Table, error)
	DeleteTable(actor Actor, tableID int64) error
}

type tableService struct {
	tableRepo repositories.TableRepository
	db        *sql.DB
}

// NewTableService creates a new instance of TableService.
func NewTableService(tableRepo repositories.TableRepository, db *sql.DB) TableService {
	return &tableService{tableRepo: tableRepo, db: db}
}

// --- Areas ---

func (s *tableService) CreateArea(actor Actor, req CreateAreaRequest) (*models.Area, error) {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return nil, err
	}
	if err := requireScope(actor, req.OutletID); err != nil {
		return nil, err
	}
	area := &models.Area{Name: req.Name, OutletID: req.OutletID, IsActive: true}
	if _, err := s.tableRepo.CreateArea(s.db, area); err != nil {
		return nil, fmt.Errorf("creating area: %w", err)
	}
	return s.tableRepo.GetAreaByID(area.ID)
}

func (s *tableService) GetAreasByOutlet(actor Actor, outletID int64) ([]models.Area, error) {
	if err := requireScope(actor, outletID); err != nil {
		return nil, err
	}
	return s.tableRepo.GetAreasByOutlet(outletID)
}

func (s *tableService) UpdateArea(actor Actor, areaID int64, req UpdateAreaRequest) (*models.Area, error) {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return nil, err
	}
	area, err := s.scopedArea(actor, areaID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		area.Name = *req.Name
	}
	if req.IsActive != nil {
		area.IsActive = *req.IsActive
	}
	if err := s.tableRepo.UpdateArea(s.db, area); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAreaNotFound
		}
		return nil, fmt.Errorf("updating area: %w", err)
	}
	return s.tableRepo.GetAreaByID(areaID)
}

// DeleteArea removes an area. An area that still has tables is deactivated
// instead, unless the caller explicitly asks for a cascade.
func (s *tableService) DeleteArea(actor Actor, areaID int64, cascade bool) error {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return err
	}
	area, err := s.scopedArea(actor, areaID)
	if err != nil {
		return err
	}

	count, err := s.tableRepo.CountTablesInArea(areaID)
	if err != nil {
		return err
	}
	if count > 0 && !cascade {
		area.IsActive = false
		if err := s.tableRepo.UpdateArea(s.db, area); err != nil {
			return fmt.Errorf("deactivating area: %w", err)
		}
		return fmt.Errorf("%w: %d tables, area deactivated instead", ErrAreaHasTables, count)
	}

	if err := s.tableRepo.DeleteArea(s.db, areaID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAreaNotFound
		}
		return fmt.Errorf("deleting area: %w", err)
	}
	return nil
}

// --- Tables ---

func (s *tableService) CreateTable(actor Actor, req CreateTableRequest) (*models.Table, error) {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return nil, err
	}
	area, err := s.scopedArea(actor, req.AreaID)
	if err != nil {
		return nil, err
	}
	if !area.IsActive {
		return nil, fmt.Errorf("%w: area %d is inactive", ErrValidation, area.ID)
	}

	table := &models.Table{
		Name:     req.Name,
		Capacity: req.Capacity,
		Status:   string(models.TableStatusAvailable),
		AreaID:   req.AreaID,
	}
	if _, err := s.tableRepo.CreateTable(s.db, table); err != nil {
		return nil, fmt.Errorf("creating table: %w", err)
	}
	created, _, err := s.tableRepo.GetTableByID(table.ID)
	return created, err
}

func (s *tableService) GetTableByID(actor Actor, tableID int64) (*models.Table, error) {
	table, outletID, err := s.tableRepo.GetTableByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("getting table: %w", err)
	}
	if !actor.CanAccessOutlet(outletID) {
		return nil, ErrTableNotFound
	}
	return table, nil
}

func (s *tableService) GetTablesByOutlet(actor Actor, outletID int64) ([]models.Table, error) {
	if err := requireScope(actor, outletID); err != nil {
		return nil, err
	}
	return s.tableRepo.GetTablesByOutlet(outletID)
}

func (s *tableService) UpdateTable(actor Actor, tableID int64, req UpdateTableRequest) (*models.Table, error) {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return nil, err
	}
	table, err := s.GetTableByID(actor, tableID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		table.Name = *req.Name
	}
	if req.Capacity != nil {
		if *req.Capacity <= 0 {
			return nil, fmt.Errorf("%w: capacity must be positive", ErrValidation)
		}
		table.Capacity = *req.Capacity
	}
	if req.AreaID != nil {
		area, err := s.scopedArea(actor, *req.AreaID)
		if err != nil {
			return nil, err
		}
		table.AreaID = area.ID
	}
	if err := s.tableRepo.UpdateTable(s.db, table); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("updating table: %w", err)
	}
	updated, _, err := s.tableRepo.GetTableByID(tableID)
	return updated, err
}

// UpdateTableStatus is the management override for table status. It never
// touches an occupied table, since occupied is owned by the order engine
// and released on order completion or cancellation.
func (s *tableService) UpdateTableStatus(actor Actor, tableID int64, status string) (*models.Table, error) {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return nil, err
	}
	if !models.IsValidTableStatus(status) {
		return nil, fmt.Errorf("%w: invalid table status %q", ErrValidation, status)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	table, outletID, err := s.tableRepo.GetTableForUpdate(tx, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("locking table: %w", err)
	}
	if !actor.CanAccessOutlet(outletID) {
		return nil, ErrTableNotFound
	}
	if table.Status == string(models.TableStatusOccupied) {
		return nil, fmt.Errorf("%w: complete or cancel the order first", ErrTableInUse)
	}

	if err := s.tableRepo.UpdateTableStatus(tx, tableID, status, time.Now()); err != nil {
		return nil, fmt.Errorf("updating table status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	updated, _, err := s.tableRepo.GetTableByID(tableID)
	return updated, err
}

func (s *tableService) DeleteTable(actor Actor, tableID int64) error {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return err
	}
	table, err := s.GetTableByID(actor, tableID)
	if err != nil {
		return err
	}
	if table.Status == string(models.TableStatusOccupied) {
		return fmt.Errorf("%w: cannot delete an occupied table", ErrTableInUse)
	}
	if err := s.tableRepo.DeleteTable(s.db, tableID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTableNotFound
		}
		return fmt.Errorf("deleting table: %w", err)
	}
	return nil
}

// scopedArea resolves an area and verifies the actor's scope covers its outlet.
func (s *tableService) scopedArea(actor Actor, areaID int64) (*models.Area, error) {
	area, err := s.tableRepo.GetAreaByID(areaID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAreaNotFound
		}
		return nil, fmt.Errorf("getting area: %w", err)
	}
	if !actor.CanAccessOutlet(area.OutletID) {
		return nil, ErrAreaNotFound
	}
	return area, nil
}
