package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/repositories"
)

// Menu catalog errors.
var (
	ErrCategoryNotFound = errors.New("menu category not found")
	ErrMenuItemNotFound = errors.New("menu item not found")
)

// CreateCategoryRequest defines the expected JSON body for category creation.
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Scope       string `json:"scope" binding:"required"`
	ChainID     *int64 `json:"chain_id"`
	OutletID    *int64 `json:"outlet_id"`
}

// UpdateCategoryRequest defines the expected JSON body for category updates.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// CreateMenuItemRequest defines the expected JSON body for item creation.
type CreateMenuItemRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	CategoryID  int64   `json:"category_id" binding:"required"`
	IsAvailable *bool   `json:"is_available"`
}

// UpdateMenuItemRequest defines the expected JSON body for item updates.
type UpdateMenuItemRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	IsAvailable *bool    `json:"is_available"`
}

// MenuService defines the interface for menu catalog management.
type MenuService interface {
	CreateCategory(actor Actor, req CreateCategoryRequest) (*models.MenuCategory, error)
	GetCategories(actor Actor, chainID, outletID *int64) ([]models.MenuCategory, error)
	UpdateCategory(actor Actor, categoryID int64, req UpdateCategoryRequest) (*models.MenuCategory, error)
	DeleteCategory(actor Actor, categoryID int64) error

	CreateItem(actor Actor, req CreateMenuItemRequest) (*models.MenuItem, error)
	GetItems(actor Actor, filters models.MenuItemFilters) ([]models.MenuItem, int, error)
	UpdateItem(actor Actor, itemID int64, req UpdateMenuItemRequest) (*models.MenuItem, error)
	DeleteItem(actor Actor, itemID int64) error
}

type menuService struct {
	menuRepo   repositories.MenuRepository
	outletRepo repositories.OutletRepository
	db         *sql.DB
}

// NewMenuService creates a new instance of MenuService.
func NewMenuService(menuRepo repositories.MenuRepository, outletRepo repositories.OutletRepository, db *sql.DB) MenuService {
	return &menuService{menuRepo: menuRepo, outletRepo: outletRepo, db: db}
}

// --- Categories ---

// CreateCategory creates a chain-wide or outlet-local category. Chain scope
// requires chain ownership; outlet scope requires the outlet in the
// caller's scope.
func (s *menuService) CreateCategory(actor Actor, req CreateCategoryRequest) (*models.MenuCategory, error) {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return nil, err
	}
	if !models.IsValidMenuScope(req.Scope) {
		return nil, fmt.Errorf("%w: invalid menu scope %q", ErrValidation, req.Scope)
	}

	category := &models.MenuCategory{
		Name:     req.Name,
		Scope:    req.Scope,
		IsActive: true,
	}
	if req.Description != "" {
		category.Description = &req.Description
	}

	switch models.MenuScope(req.Scope) {
	case models.MenuScopeChain:
		if req.ChainID == nil {
			return nil, fmt.Errorf("%w: chain scope requires chain_id", ErrValidation)
		}
		if err := s.requireChainAdmin(actor, *req.ChainID); err != nil {
			return nil, err
		}
		category.ChainID = req.ChainID
	case models.MenuScopeOutlet:
		if req.OutletID == nil {
			return nil, fmt.Errorf("%w: outlet scope requires outlet_id", ErrValidation)
		}
		if err := requireScope(actor, *req.OutletID); err != nil {
			return nil, err
		}
		outlet, err := s.outletRepo.GetOutletByID(*req.OutletID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrOutletNotFound
			}
			return nil, fmt.Errorf("getting outlet: %w", err)
		}
		category.OutletID = req.OutletID
		category.ChainID = &outlet.ChainID
	}

	if _, err := s.menuRepo.CreateCategory(s.db, category); err != nil {
		return nil, fmt.Errorf("creating menu category: %w", err)
	}
	return s.menuRepo.GetCategoryByID(category.ID)
}

func (s *menuService) GetCategories(actor Actor, chainID, outletID *int64) ([]models.MenuCategory, error) {
	if outletID != nil {
		if err := requireScope(actor, *outletID); err != nil {
			return nil, err
		}
	}
	return s.menuRepo.GetCategories(chainID, outletID)
}

func (s *menuService) UpdateCategory(actor Actor, categoryID int64, req UpdateCategoryRequest) (*models.MenuCategory, error) {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return nil, err
	}
	category, err := s.scopedCategory(actor, categoryID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := s.menuRepo.UpdateCategory(s.db, category); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("updating menu category: %w", err)
	}
	return s.menuRepo.GetCategoryByID(categoryID)
}

func (s *menuService) DeleteCategory(actor Actor, categoryID int64) error {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return err
	}
	if _, err := s.scopedCategory(actor, categoryID); err != nil {
		return err
	}
	if err := s.menuRepo.DeleteCategory(s.db, categoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("deleting menu category: %w", err)
	}
	return nil
}

// --- Items ---

func (s *menuService) CreateItem(actor Actor, req CreateMenuItemRequest) (*models.MenuItem, error) {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return nil, err
	}
	if _, err := s.scopedCategory(actor, req.CategoryID); err != nil {
		return nil, err
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	item := &models.MenuItem{
		Name:        req.Name,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsAvailable: true,
	}
	if req.Description != "" {
		item.Description = &req.Description
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if _, err := s.menuRepo.CreateItem(s.db, item); err != nil {
		return nil, fmt.Errorf("creating menu item: %w", err)
	}
	return s.menuRepo.GetItemByID(item.ID)
}

func (s *menuService) GetItems(actor Actor, filters models.MenuItemFilters) ([]models.MenuItem, int, error) {
	if filters.CategoryID != nil {
		if _, err := s.scopedCategory(actor, *filters.CategoryID); err != nil {
			return nil, 0, err
		}
	}
	return s.menuRepo.GetItems(filters)
}

func (s *menuService) UpdateItem(actor Actor, itemID int64, req UpdateMenuItemRequest) (*models.MenuItem, error) {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return nil, err
	}
	item, err := s.menuRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("getting menu item: %w", err)
	}
	if _, err := s.scopedCategory(actor, item.CategoryID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		item.Price = *req.Price
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := s.menuRepo.UpdateItem(s.db, item); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("updating menu item: %w", err)
	}
	return s.menuRepo.GetItemByID(itemID)
}

func (s *menuService) DeleteItem(actor Actor, itemID int64) error {
	if err := requireRole(actor, managerOrAbove...); err != nil {
		return err
	}
	item, err := s.menuRepo.GetItemByID(itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return fmt.Errorf("getting menu item: %w", err)
	}
	if _, err := s.scopedCategory(actor, item.CategoryID); err != nil {
		return err
	}
	if err := s.menuRepo.DeleteItem(s.db, itemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return fmt.Errorf("deleting menu item: %w", err)
	}
	return nil
}

// scopedCategory resolves a category and verifies the actor may manage it.
// Outlet-scoped categories follow outlet scope; chain-scoped categories
// require chain ownership.
func (s *menuService) scopedCategory(actor Actor, categoryID int64) (*models.MenuCategory, error) {
	category, err := s.menuRepo.GetCategoryByID(categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("getting menu category: %w", err)
	}

	if category.OutletID != nil {
		if !actor.CanAccessOutlet(*category.OutletID) {
			return nil, ErrCategoryNotFound
		}
		return category, nil
	}
	if category.ChainID != nil {
		if err := s.requireChainAdmin(actor, *category.ChainID); err != nil {
			return nil, err
		}
	}
	return category, nil
}

// requireChainAdmin verifies the actor owns the chain or is unrestricted.
// Managers may touch chain-wide catalog entries only when one of their
// outlets belongs to the chain.
func (s *menuService) requireChainAdmin(actor Actor, chainID int64) error {
	if actor.Unrestricted {
		return nil
	}
	chain, err := s.outletRepo.GetChainByID(chainID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrChainNotFound
		}
		return fmt.Errorf("getting chain: %w", err)
	}
	if chain.OwnerID == actor.UserID {
		return nil
	}
	outlets, err := s.outletRepo.GetOutletsByChain(chainID)
	if err != nil {
		return fmt.Errorf("getting chain outlets: %w", err)
	}
	for _, outlet := range outlets {
		if actor.CanAccessOutlet(outlet.ID) {
			return nil
		}
	}
	return fmt.Errorf("%w: chain %d is outside caller scope", ErrForbidden, chainID)
}
