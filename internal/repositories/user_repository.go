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

// UserRepository defines the interface for user-account database operations.
type UserRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) (int64, error)
	FindUserByUsername(username string) (*models.User, error)
	FindUserByPIN(pin string) (*models.User, error)
	FindUserByID(userID int64) (*models.User, error)
	ListUsers(filters models.UserFilters) ([]models.User, error)
	UpdateUser(executor SQLExecutor, user *models.User) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hash, pin, role, outlet_id, is_active, created_at, updated_at`

func (r *userRepository) CreateUser(executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, pin, role, outlet_id, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	now := time.Now()
	err := executor.QueryRow(query,
		user.Username, user.Email, user.PasswordHash, user.PIN, user.Role, user.OutletID,
		true, now, now,
	).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

func (r *userRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.PIN,
		&user.Role, &user.OutletID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
	}
	return user, nil
}

func (r *userRepository) FindUserByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRow(query, username))
}

func (r *userRepository) FindUserByPIN(pin string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE pin = $1`
	return r.scanUser(r.db.QueryRow(query, pin))
}

func (r *userRepository) FindUserByID(userID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(query, userID))
}

func (r *userRepository) ListUsers(filters models.UserFilters) ([]models.User, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + userColumns + ` FROM users`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argCounter))
		args = append(args, *filters.Role)
		argCounter++
	}
	if filters.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argCounter))
		args = append(args, *filters.IsActive)
		argCounter++
	}
	if filters.OutletIDs != nil {
		conditions = append(conditions, fmt.Sprintf("outlet_id = ANY($%d)", argCounter))
		args = append(args, pq.Array(filters.OutletIDs))
		argCounter++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.PIN,
			&u.Role, &u.OutletID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, nil
}

func (r *userRepository) UpdateUser(executor SQLExecutor, user *models.User) error {
	query := `UPDATE users
	          SET email = $1, password_hash = $2, pin = $3, role = $4,
	              outlet_id = $5, is_active = $6, updated_at = $7
	          WHERE id = $8`
	result, err := executor.Exec(query,
		user.Email, user.PasswordHash, user.PIN, user.Role,
		user.OutletID, user.IsActive, time.Now(), user.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating user ID %d: %v", ErrDatabaseError, user.ID, err)
	}
	return requireRowsAffected(result, "user update")
}
