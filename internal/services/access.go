package services

import (
	"errors"
	"fmt"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/repositories"
)

// Actor is the resolved identity of a caller: who they are, what role they
// hold and which outlets they may act on. Superadmins are unrestricted.
type Actor struct {
	UserID       int64
	Role         models.UserRole
	OutletIDs    []int64
	Unrestricted bool
}

// CanAccessOutlet reports whether the actor's scope covers an outlet.
func (a Actor) CanAccessOutlet(outletID int64) bool {
	if a.Unrestricted {
		return true
	}
	for _, id := range a.OutletIDs {
		if id == outletID {
			return true
		}
	}
	return false
}

// requireScope rejects callers whose outlet scope excludes the target.
func requireScope(actor Actor, outletID int64) error {
	if !actor.CanAccessOutlet(outletID) {
		return fmt.Errorf("%w: outlet %d is outside caller scope", ErrForbidden, outletID)
	}
	return nil
}

// requireRole rejects callers not holding one of the allowed roles.
func requireRole(actor Actor, allowed ...models.UserRole) error {
	for _, role := range allowed {
		if actor.Role == role {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s lacks permission", ErrForbidden, actor.Role)
}

// Role groups used at engine boundaries.
var (
	kitchenOrAbove = []models.UserRole{models.RoleKitchen, models.RoleManager, models.RoleOwner, models.RoleSuperAdmin}
	managerOrAbove = []models.UserRole{models.RoleManager, models.RoleOwner, models.RoleSuperAdmin}
	ownerOrAbove   = []models.UserRole{models.RoleOwner, models.RoleSuperAdmin}
)

// --- AccessService ---

// AccessService resolves an authenticated user to an Actor.
type AccessService interface {
	ResolveActor(userID int64, role string, outletID *int64) (Actor, error)
}

type accessService struct {
	outletRepo repositories.OutletRepository
}

// NewAccessService creates a new instance of AccessService.
func NewAccessService(outletRepo repositories.OutletRepository) AccessService {
	return &accessService{outletRepo: outletRepo}
}

// ResolveActor maps token claims to a concrete outlet scope: superadmins
// are unrestricted, owners cover every outlet of their chains, staff cover
// exactly their assigned outlet.
func (s *accessService) ResolveActor(userID int64, role string, outletID *int64) (Actor, error) {
	if !models.IsValidUserRole(role) {
		return Actor{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	actor := Actor{UserID: userID, Role: models.UserRole(role)}
	switch actor.Role {
	case models.RoleSuperAdmin:
		actor.Unrestricted = true
	case models.RoleOwner:
		ids, err := s.outletRepo.ListOutletIDsByOwner(userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				break
			}
			return Actor{}, fmt.Errorf("resolving owner outlets: %w", err)
		}
		actor.OutletIDs = ids
	default:
		if outletID != nil {
			actor.OutletIDs = []int64{*outletID}
		}
	}
	return actor, nil
}
