package services

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/repositories"
	"github.com/harimoradiya/rmspos/pkg/utils"
)

type fakeUserRepo struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) CreateUser(_ repositories.SQLExecutor, user *models.User) (int64, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return 0, repositories.ErrDuplicateKey
		}
		if user.PIN != nil && existing.PIN != nil && *existing.PIN == *user.PIN {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.ID] = &copied
	return user.ID, nil
}

func (r *fakeUserRepo) FindUserByUsername(username string) (*models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) FindUserByPIN(pin string) (*models.User, error) {
	for _, user := range r.users {
		if user.PIN != nil && *user.PIN == pin {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeUserRepo) FindUserByID(userID int64) (*models.User, error) {
	user, ok := r.users[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) ListUsers(filters models.UserFilters) ([]models.User, error) {
	var out []models.User
	for _, user := range r.users {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.IsActive != nil && user.IsActive != *filters.IsActive {
			continue
		}
		if filters.OutletIDs != nil {
			match := false
			if user.OutletID != nil {
				for _, id := range filters.OutletIDs {
					if id == *user.OutletID {
						match = true
						break
					}
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) UpdateUser(_ repositories.SQLExecutor, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

// addUser seeds an account directly, bypassing registration validation.
func (r *fakeUserRepo) addUser(userID int64, role string, outletID *int64) {
	if userID > r.nextID {
		r.nextID = userID
	}
	r.users[userID] = &models.User{
		ID:       userID,
		Username: fmt.Sprintf("user-%d", userID),
		Email:    fmt.Sprintf("user-%d@example.com", userID),
		Role:     role,
		OutletID: outletID,
		IsActive: true,
	}
}

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo, *fakeOutletRepo) {
	t.Helper()
	users := newFakeUserRepo()
	outlets := newFakeOutletRepo()
	outlets.addOutlet(1, 1, 10)
	return NewAuthService(users, outlets, newTestDB(t)), users, outlets
}

func TestRegister(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	resp, err := svc.Register(RegisterRequest{
		Username: "kitchen1",
		Email:    "kitchen1@example.com",
		Password: "a-long-password",
		Role:     string(models.RoleKitchen),
		OutletID: int64Ptr(1),
		PIN:      "123456",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("registration should issue both tokens")
	}
	claims, err := utils.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Role != string(models.RoleKitchen) || claims.OutletID == nil || *claims.OutletID != 1 {
		t.Errorf("claims = %+v, want kitchen at outlet 1", claims)
	}

	// Same username again.
	if _, err := svc.Register(RegisterRequest{
		Username: "kitchen1",
		Email:    "other@example.com",
		Password: "a-long-password",
		Role:     string(models.RoleKitchen),
		OutletID: int64Ptr(1),
	}); !errors.Is(err, ErrUsernameExists) {
		t.Errorf("duplicate username: error = %v, want %v", err, ErrUsernameExists)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{
			name: "unknown role",
			req:  RegisterRequest{Username: "u", Email: "u@example.com", Password: "password1", Role: "janitor"},
		},
		{
			name: "bad email",
			req:  RegisterRequest{Username: "u", Email: "not-an-email", Password: "password1", Role: string(models.RoleOwner)},
		},
		{
			name: "staff without outlet",
			req:  RegisterRequest{Username: "u", Email: "u@example.com", Password: "password1", Role: string(models.RoleWaiter)},
		},
		{
			name: "staff at unknown outlet",
			req:  RegisterRequest{Username: "u", Email: "u@example.com", Password: "password1", Role: string(models.RoleWaiter), OutletID: int64Ptr(42)},
		},
		{
			name: "owner with outlet",
			req:  RegisterRequest{Username: "u", Email: "u@example.com", Password: "password1", Role: string(models.RoleOwner), OutletID: int64Ptr(1)},
		},
		{
			name: "short pin",
			req:  RegisterRequest{Username: "u", Email: "u@example.com", Password: "password1", Role: string(models.RoleWaiter), OutletID: int64Ptr(1), PIN: "123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newAuthFixture(t)
			if _, err := svc.Register(tt.req); !errors.Is(err, ErrValidation) {
				t.Errorf("Register() error = %v, want %v", err, ErrValidation)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, users, _ := newAuthFixture(t)

	if _, err := svc.Register(RegisterRequest{
		Username: "waiter1",
		Email:    "waiter1@example.com",
		Password: "a-long-password",
		Role:     string(models.RoleWaiter),
		OutletID: int64Ptr(1),
		PIN:      "654321",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	resp, err := svc.Login(LoginRequest{Username: "waiter1", Password: "a-long-password"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.User.Username != "waiter1" {
		t.Errorf("user = %q, want waiter1", resp.User.Username)
	}

	if _, err := svc.Login(LoginRequest{Username: "waiter1", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: error = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, err := svc.Login(LoginRequest{Username: "nobody", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: error = %v, want %v", err, ErrInvalidCredentials)
	}
	if _, err := svc.Login(LoginRequest{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty login: error = %v, want %v", err, ErrValidation)
	}

	// Terminal PIN login.
	if _, err := svc.Login(LoginRequest{PIN: "654321"}); err != nil {
		t.Errorf("PIN login error = %v", err)
	}
	if _, err := svc.Login(LoginRequest{PIN: "000000"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown PIN: error = %v, want %v", err, ErrInvalidCredentials)
	}

	// Deactivated accounts cannot log in at all.
	users.users[resp.User.ID].IsActive = false
	if _, err := svc.Login(LoginRequest{Username: "waiter1", Password: "a-long-password"}); !errors.Is(err, ErrUserInactive) {
		t.Errorf("inactive user: error = %v, want %v", err, ErrUserInactive)
	}
}

func TestGetUserProfile(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	resp, err := svc.Register(RegisterRequest{
		Username: "owner1",
		Email:    "owner1@example.com",
		Password: "a-long-password",
		Role:     string(models.RoleOwner),
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.GetUserProfile(resp.User.ID)
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if user.Username != "owner1" {
		t.Errorf("username = %q, want owner1", user.Username)
	}

	if _, err := svc.GetUserProfile(999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: error = %v, want %v", err, ErrUserNotFound)
	}
}

func TestListUsers(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	users.addUser(30, string(models.RoleWaiter), int64Ptr(1))
	users.addUser(31, string(models.RoleKitchen), int64Ptr(1))
	users.addUser(50, string(models.RoleWaiter), int64Ptr(2))

	// Owner of chain 1 sees only the staff of outlet 1.
	listed, err := svc.ListUsers(ownerActor(), UserListFilters{})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("len(users) = %d, want 2", len(listed))
	}

	role := string(models.RoleWaiter)
	listed, err = svc.ListUsers(ownerActor(), UserListFilters{Role: &role})
	if err != nil {
		t.Fatalf("ListUsers(waiter) error = %v", err)
	}
	if len(listed) != 1 || listed[0].ID != 30 {
		t.Errorf("waiter filter = %+v, want user 30 only", listed)
	}

	admin := Actor{UserID: 1, Role: models.RoleSuperAdmin, Unrestricted: true}
	listed, err = svc.ListUsers(admin, UserListFilters{})
	if err != nil {
		t.Fatalf("ListUsers(superadmin) error = %v", err)
	}
	if len(listed) != 3 {
		t.Errorf("superadmin listing = %d users, want 3", len(listed))
	}

	if _, err := svc.ListUsers(managerActor(), UserListFilters{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("manager listing: error = %v, want %v", err, ErrForbidden)
	}
}

func TestUpdateUser(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	users.addUser(30, string(models.RoleWaiter), int64Ptr(1))
	users.addUser(50, string(models.RoleWaiter), int64Ptr(2))

	role := string(models.RoleKitchen)
	updated, err := svc.UpdateUser(ownerActor(), 30, UpdateUserRequest{Role: &role})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Role != string(models.RoleKitchen) {
		t.Errorf("Role = %q, want kitchen", updated.Role)
	}

	// Moving staff to an outlet outside the owner's scope is refused.
	if _, err := svc.UpdateUser(ownerActor(), 30, UpdateUserRequest{OutletID: int64Ptr(2)}); !errors.Is(err, ErrForbidden) {
		t.Errorf("out-of-scope outlet: error = %v, want %v", err, ErrForbidden)
	}

	ownerRole := string(models.RoleOwner)
	if _, err := svc.UpdateUser(ownerActor(), 30, UpdateUserRequest{Role: &ownerRole}); !errors.Is(err, ErrValidation) {
		t.Errorf("owner role with outlet assignment: error = %v, want %v", err, ErrValidation)
	}

	short := "short"
	if _, err := svc.UpdateUser(ownerActor(), 30, UpdateUserRequest{Password: &short}); !errors.Is(err, ErrValidation) {
		t.Errorf("short password: error = %v, want %v", err, ErrValidation)
	}

	// A password reset by the owner works for the next login.
	newPassword := "a-fresh-password"
	if _, err := svc.UpdateUser(ownerActor(), 30, UpdateUserRequest{Password: &newPassword}); err != nil {
		t.Fatalf("UpdateUser(password) error = %v", err)
	}
	if _, err := svc.Login(LoginRequest{Username: "user-30", Password: newPassword}); err != nil {
		t.Errorf("login after password reset: error = %v", err)
	}

	// Staff of another chain read as not found, not as forbidden.
	if _, err := svc.UpdateUser(ownerActor(), 50, UpdateUserRequest{Role: &role}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("foreign staff: error = %v, want %v", err, ErrUserNotFound)
	}
}

func TestDeactivateUser(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	users.addUser(30, string(models.RoleWaiter), int64Ptr(1))
	users.addUser(50, string(models.RoleWaiter), int64Ptr(2))

	if err := svc.DeactivateUser(ownerActor(), ownerActor().UserID); !errors.Is(err, ErrValidation) {
		t.Errorf("self-deactivation: error = %v, want %v", err, ErrValidation)
	}

	if err := svc.DeactivateUser(ownerActor(), 30); err != nil {
		t.Fatalf("DeactivateUser() error = %v", err)
	}
	if users.users[30].IsActive {
		t.Error("user 30 should be inactive")
	}
	// Deactivation is idempotent.
	if err := svc.DeactivateUser(ownerActor(), 30); err != nil {
		t.Errorf("repeated deactivation: error = %v", err)
	}

	if err := svc.DeactivateUser(ownerActor(), 50); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("foreign staff: error = %v, want %v", err, ErrUserNotFound)
	}
	if err := svc.DeactivateUser(ownerActor(), 999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown user: error = %v, want %v", err, ErrUserNotFound)
	}
}
