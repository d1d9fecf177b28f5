package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/repositories"
	"github.com/harimoradiya/rmspos/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// Authentication errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameExists     = errors.New("username or email already exists")
	ErrUserInactive       = errors.New("user account is inactive")
)

// RegisterRequest defines the expected JSON body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
	OutletID *int64 `json:"outlet_id"`
	PIN      string `json:"pin"`
}

// LoginRequest accepts either username+password or a terminal PIN.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	PIN      string `json:"pin"`
}

// AuthResponse is returned on successful login or registration.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// UpdateUserRequest defines the expected JSON body for user administration
// updates. Nil fields keep their current value.
type UpdateUserRequest struct {
	Role     *string `json:"role"`
	OutletID *int64  `json:"outlet_id"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
}

// UserListFilters narrows the user-administration listing.
type UserListFilters struct {
	Role     *string
	IsActive *bool
}

// AuthService defines the interface for authentication and user
// administration operations.
type AuthService interface {
	Register(req RegisterRequest) (*AuthResponse, error)
	Login(req LoginRequest) (*AuthResponse, error)
	GetUserProfile(userID int64) (*models.User, error)

	ListUsers(actor Actor, filters UserListFilters) ([]models.User, error)
	UpdateUser(actor Actor, userID int64, req UpdateUserRequest) (*models.User, error)
	DeactivateUser(actor Actor, userID int64) error
}

type authService struct {
	userRepo   repositories.UserRepository
	outletRepo repositories.OutletRepository
	db         *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(userRepo repositories.UserRepository, outletRepo repositories.OutletRepository, db *sql.DB) AuthService {
	return &authService{userRepo: userRepo, outletRepo: outletRepo, db: db}
}

// Register creates a new user account. Staff roles must be pinned to an
// existing outlet; owners and superadmins must not carry one.
func (s *authService) Register(req RegisterRequest) (*AuthResponse, error) {
	if !models.IsValidUserRole(req.Role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, req.Role)
	}
	if !utils.IsValidEmail(req.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrValidation)
	}

	role := models.UserRole(req.Role)
	if role.RequiresOutlet() {
		if req.OutletID == nil {
			return nil, fmt.Errorf("%w: role %s requires an outlet assignment", ErrValidation, role)
		}
		exists, err := s.outletRepo.OutletExists(*req.OutletID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: outlet %d does not exist", ErrValidation, *req.OutletID)
		}
	} else if req.OutletID != nil {
		return nil, fmt.Errorf("%w: role %s must not carry an outlet assignment", ErrValidation, role)
	}

	var pin *string
	if req.PIN != "" {
		if !utils.IsValidPIN(req.PIN) {
			return nil, fmt.Errorf("%w: PIN must be exactly six digits", ErrValidation)
		}
		pin = &req.PIN
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		PIN:          pin,
		Role:         req.Role,
		OutletID:     req.OutletID,
		IsActive:     true,
	}

	if _, err := s.userRepo.CreateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return s.issueTokens(user)
}

// Login authenticates with username and password, or with a six-digit
// terminal PIN when no username is given.
func (s *authService) Login(req LoginRequest) (*AuthResponse, error) {
	var (
		user *models.User
		err  error
	)
	switch {
	case req.Username != "":
		if req.Password == "" {
			return nil, fmt.Errorf("%w: password is required", ErrValidation)
		}
		user, err = s.userRepo.FindUserByUsername(req.Username)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("finding user: %w", err)
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			return nil, ErrInvalidCredentials
		}
	case req.PIN != "":
		if !utils.IsValidPIN(req.PIN) {
			return nil, ErrInvalidCredentials
		}
		user, err = s.userRepo.FindUserByPIN(req.PIN)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, fmt.Errorf("finding user by PIN: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: username or PIN is required", ErrValidation)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return s.issueTokens(user)
}

// GetUserProfile retrieves the profile of the authenticated user.
func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("finding user by id: %w", err)
	}
	return user, nil
}

// ListUsers returns the accounts the actor administers. Owners see the
// staff of their outlets; superadmins see everyone.
func (s *authService) ListUsers(actor Actor, filters UserListFilters) ([]models.User, error) {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return nil, err
	}
	if filters.Role != nil && !models.IsValidUserRole(*filters.Role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, *filters.Role)
	}

	repoFilters := models.UserFilters{Role: filters.Role, IsActive: filters.IsActive}
	if !actor.Unrestricted {
		// An empty slice matches nothing, so an owner without outlets
		// gets an empty listing rather than everyone's accounts.
		repoFilters.OutletIDs = actor.OutletIDs
		if repoFilters.OutletIDs == nil {
			repoFilters.OutletIDs = []int64{}
		}
	}
	users, err := s.userRepo.ListUsers(repoFilters)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// UpdateUser applies a partial update to an administered account.
func (s *authService) UpdateUser(actor Actor, userID int64, req UpdateUserRequest) (*models.User, error) {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return nil, err
	}
	user, err := s.administeredUser(actor, userID)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		if !models.IsValidUserRole(*req.Role) {
			return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, *req.Role)
		}
		user.Role = *req.Role
	}
	if req.OutletID != nil {
		user.OutletID = req.OutletID
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	role := models.UserRole(user.Role)
	if role.RequiresOutlet() {
		if user.OutletID == nil {
			return nil, fmt.Errorf("%w: role %s requires an outlet assignment", ErrValidation, role)
		}
		if err := requireScope(actor, *user.OutletID); err != nil {
			return nil, err
		}
		exists, err := s.outletRepo.OutletExists(*user.OutletID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("%w: outlet %d does not exist", ErrValidation, *user.OutletID)
		}
	} else if user.OutletID != nil {
		return nil, fmt.Errorf("%w: role %s must not carry an outlet assignment", ErrValidation, role)
	}

	if err := s.userRepo.UpdateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return s.userRepo.FindUserByID(userID)
}

// DeactivateUser disables an account. Accounts are kept because invoices
// and chains reference them; login is refused while inactive.
func (s *authService) DeactivateUser(actor Actor, userID int64) error {
	if err := requireRole(actor, ownerOrAbove...); err != nil {
		return err
	}
	if actor.UserID == userID {
		return fmt.Errorf("%w: cannot deactivate your own account", ErrValidation)
	}
	user, err := s.administeredUser(actor, userID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}
	user.IsActive = false
	if err := s.userRepo.UpdateUser(s.db, user); err != nil {
		return fmt.Errorf("deactivating user: %w", err)
	}
	return nil
}

// administeredUser loads a user and verifies the actor administers it:
// superadmins cover everyone, owners cover staff assigned to outlets in
// their scope. Accounts outside the scope read as not found.
func (s *authService) administeredUser(actor Actor, userID int64) (*models.User, error) {
	user, err := s.userRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("finding user by id: %w", err)
	}
	if actor.Unrestricted {
		return user, nil
	}
	if user.OutletID == nil || !actor.CanAccessOutlet(*user.OutletID) {
		return nil, fmt.Errorf("%w: user %d", ErrUserNotFound, userID)
	}
	return user, nil
}

func (s *authService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role, user.OutletID)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}
