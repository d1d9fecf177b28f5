package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/repositories"
)

// Chain and outlet errors.
var (
	ErrChainNotFound  = errors.New("restaurant chain not found")
	ErrOutletNotFound = errors.New("restaurant outlet not found")
)

// CreateChainRequest defines the expected JSON body for chain creation.
type CreateChainRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateOutletRequest defines the expected JSON body for outlet creation.
type CreateOutletRequest struct {
	ChainID    int64  `json:"chain_id" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// UpdateOutletRequest defines the expected JSON body for outlet updates.
// Nil fields keep their current value.
type UpdateOutletRequest struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	Status     *string `json:"status"`
}

// OutletService defines the interface for chain and outlet management.
type OutletService interface {
	CreateChain(actor Actor, req CreateChainRequest) (*models.RestaurantChain, error)
	GetMyChains(actor Actor) ([]models.RestaurantChain, error)
	DeleteChain(actor Actor, chainID int64) error

	CreateOutlet(actor Actor, req CreateOutletRequest) (*models.RestaurantOutlet, error)
	GetOutletByID(actor Actor, outletID int64) (*models.RestaurantOutlet, error)
	GetOutletsByChain(actor Actor, chainID int64) ([]models.RestaurantOutlet, error)
	UpdateOutlet(actor Actor, outletID int64, req UpdateOutletRequest) (*models.RestaurantOutlet, error)
}

type outletService struct {
	outletRepo repositories.OutletRepository
	db         *sql.DB
}

// NewOutletService creates a new instance of OutletService.
func NewOutletService(outletRepo repositories.OutletRepository, db *sql.DB) OutletService {
	return &outletService{outletRepo: outletRepo, db: db}
}

// --- Chains ---

func (s *outletService) CreateChain(actor Actor, req CreateChainRequest) (*models.RestaurantChain, error) {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return nil, err
	}
	chain := &models.RestaurantChain{Name: req.Name, OwnerID: actor.UserID}
	if _, err := s.outletRepo.CreateChain(s.db, chain); err != nil {
		return nil, fmt.Errorf("creating chain: %w", err)
	}
	return s.outletRepo.GetChainByID(chain.ID)
}

func (s *outletService) GetMyChains(actor Actor) ([]models.RestaurantChain, error) {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return nil, err
	}
	return s.outletRepo.GetChainsByOwner(actor.UserID)
}

func (s *outletService) DeleteChain(actor Actor, chainID int64) error {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return err
	}
	chain, err := s.ownedChain(actor, chainID)
	if err != nil {
		return err
	}
	if err := s.outletRepo.DeleteChain(s.db, chain.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrChainNotFound
		}
		return fmt.Errorf("deleting chain: %w", err)
	}
	return nil
}

// --- Outlets ---

func (s *outletService) CreateOutlet(actor Actor, req CreateOutletRequest) (*models.RestaurantOutlet, error) {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return nil, err
	}
	if _, err := s.ownedChain(actor, req.ChainID); err != nil {
		return nil, err
	}

	outlet := &models.RestaurantOutlet{
		ChainID:    req.ChainID,
		Name:       req.Name,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Status:     "active",
	}
	if req.Phone != "" {
		outlet.Phone = &req.Phone
	}
	if req.Email != "" {
		outlet.Email = &req.Email
	}

	if _, err := s.outletRepo.CreateOutlet(s.db, outlet); err != nil {
		return nil, fmt.Errorf("creating outlet: %w", err)
	}
	return s.outletRepo.GetOutletByID(outlet.ID)
}

func (s *outletService) GetOutletByID(actor Actor, outletID int64) (*models.RestaurantOutlet, error) {
	if err := requireScope(actor, outletID); err != nil {
		return nil, err
	}
	outlet, err := s.outletRepo.GetOutletByID(outletID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOutletNotFound
		}
		return nil, fmt.Errorf("getting outlet: %w", err)
	}
	return outlet, nil
}

func (s *outletService) GetOutletsByChain(actor Actor, chainID int64) ([]models.RestaurantOutlet, error) {
	if _, err := s.ownedChain(actor, chainID); err != nil {
		return nil, err
	}
	return s.outletRepo.GetOutletsByChain(chainID)
}

func (s *outletService) UpdateOutlet(actor Actor, outletID int64, req UpdateOutletRequest) (*models.RestaurantOutlet, error) {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return nil, err
	}
	if err := requireScope(actor, outletID); err != nil {
		return nil, err
	}
	outlet, err := s.outletRepo.GetOutletByID(outletID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOutletNotFound
		}
		return nil, fmt.Errorf("getting outlet: %w", err)
	}

	if req.Name != nil {
		outlet.Name = *req.Name
	}
	if req.Address != nil {
		outlet.Address = *req.Address
	}
	if req.City != nil {
		outlet.City = *req.City
	}
	if req.State != nil {
		outlet.State = *req.State
	}
	if req.PostalCode != nil {
		outlet.PostalCode = *req.PostalCode
	}
	if req.Country != nil {
		outlet.Country = *req.Country
	}
	if req.Phone != nil {
		outlet.Phone = req.Phone
	}
	if req.Email != nil {
		outlet.Email = req.Email
	}
	if req.Status != nil {
		if *req.Status != "active" && *req.Status != "inactive" {
			return nil, fmt.Errorf("%w: invalid outlet status %q", ErrValidation, *req.Status)
		}
		outlet.Status = *req.Status
	}

	if err := s.outletRepo.UpdateOutlet(s.db, outlet); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOutletNotFound
		}
		return nil, fmt.Errorf("updating outlet: %w", err)
	}
	return s.outletRepo.GetOutletByID(outletID)
}

// ownedChain resolves a chain and verifies the actor may administer it.
// Superadmins may administer any chain.
func (s *outletService) ownedChain(actor Actor, chainID int64) (*models.RestaurantChain, error) {
	chain, err := s.outletRepo.GetChainByID(chainID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrChainNotFound
		}
		return nil, fmt.Errorf("getting chain: %w", err)
	}
	if !actor.Unrestricted && chain.OwnerID != actor.UserID {
		return nil, fmt.Errorf("%w: chain %d belongs to another owner", ErrForbidden, chainID)
	}
	return chain, nil
}
