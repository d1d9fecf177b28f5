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

// SubscriptionRepository defines the interface for subscription database
// operations.
type SubscriptionRepository interface {
	CreateSubscription(executor SQLExecutor, subscription *models.Subscription) (int64, error)
	GetSubscriptionByID(subscriptionID int64) (*models.Subscription, error)
	GetSubscriptionByIDForUpdate(executor SQLExecutor, subscriptionID int64) (*models.Subscription, error)

	// GetCurrentSubscriptionByUser returns the user's active or expired
	// subscription, or ErrNotFound. Cancelled subscriptions never match.
	GetCurrentSubscriptionByUser(userID int64) (*models.Subscription, error)

	ListSubscriptions(filters models.SubscriptionFilters) ([]models.Subscription, error)
	UpdateSubscription(executor SQLExecutor, subscription *models.Subscription) error
	DeleteSubscription(executor SQLExecutor, subscriptionID int64) error
}

type subscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new instance of SubscriptionRepository.
func NewSubscriptionRepository(db *sql.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, chain_id, tier, status, start_date, end_date, created_at, updated_at`

func (r *subscriptionRepository) CreateSubscription(executor SQLExecutor, subscription *models.Subscription) (int64, error) {
	query := `INSERT INTO subscriptions (user_id, chain_id, tier, status, start_date, end_date, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	now := time.Now()
	err := executor.QueryRow(query,
		subscription.UserID, subscription.ChainID, subscription.Tier, subscription.Status,
		subscription.StartDate, subscription.EndDate, now, now,
	).Scan(&subscription.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating subscription (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating subscription: %v", ErrDatabaseError, err)
	}
	return subscription.ID, nil
}

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	subscription := &models.Subscription{}
	err := row.Scan(
		&subscription.ID, &subscription.UserID, &subscription.ChainID, &subscription.Tier,
		&subscription.Status, &subscription.StartDate, &subscription.EndDate,
		&subscription.CreatedAt, &subscription.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning subscription: %v", ErrDatabaseError, err)
	}
	return subscription, nil
}

func (r *subscriptionRepository) GetSubscriptionByID(subscriptionID int64) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	return scanSubscription(r.db.QueryRow(query, subscriptionID))
}

func (r *subscriptionRepository) GetSubscriptionByIDForUpdate(executor SQLExecutor, subscriptionID int64) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 FOR UPDATE`
	return scanSubscription(executor.QueryRow(query, subscriptionID))
}

func (r *subscriptionRepository) GetCurrentSubscriptionByUser(userID int64) (*models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
	          WHERE user_id = $1 AND status IN ('active', 'expired')
	          ORDER BY id DESC
	          LIMIT 1`
	return scanSubscription(r.db.QueryRow(query, userID))
}

func (r *subscriptionRepository) ListSubscriptions(filters models.SubscriptionFilters) ([]models.Subscription, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + subscriptionColumns + ` FROM subscriptions`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argCounter))
		args = append(args, *filters.UserID)
		argCounter++
	}
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Tier != nil {
		conditions = append(conditions, fmt.Sprintf("tier = $%d", argCounter))
		args = append(args, *filters.Tier)
		argCounter++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY id")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing subscriptions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	subscriptions := []models.Subscription{}
	for rows.Next() {
		var s models.Subscription
		err := rows.Scan(
			&s.ID, &s.UserID, &s.ChainID, &s.Tier, &s.Status,
			&s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning subscription: %v", ErrDatabaseError, err)
		}
		subscriptions = append(subscriptions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating subscription rows: %v", ErrDatabaseError, err)
	}
	return subscriptions, nil
}

func (r *subscriptionRepository) UpdateSubscription(executor SQLExecutor, subscription *models.Subscription) error {
	query := `UPDATE subscriptions
	          SET tier = $1, status = $2, end_date = $3, updated_at = $4
	          WHERE id = $5`
	result, err := executor.Exec(query,
		subscription.Tier, subscription.Status, subscription.EndDate, time.Now(), subscription.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating subscription ID %d: %v", ErrDatabaseError, subscription.ID, err)
	}
	return requireRowsAffected(result, "subscription update")
}

func (r *subscriptionRepository) DeleteSubscription(executor SQLExecutor, subscriptionID int64) error {
	result, err := executor.Exec(`DELETE FROM subscriptions WHERE id = $1`, subscriptionID)
	if err != nil {
		return fmt.Errorf("%w: deleting subscription ID %d: %v", ErrDatabaseError, subscriptionID, err)
	}
	return requireRowsAffected(result, "subscription delete")
}
