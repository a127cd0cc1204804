package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/model"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/service"
	"github.com/InugamiDev/car-rental-ooad-sub000/pkg/database"
)

// UserPoolInterface defines the database operations needed by UserRepository
// outside a transaction. This allows for easier testing with mocks.
type UserPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository provides data access for users using pgx.
type UserRepository struct {
	pool UserPoolInterface
}

// NewUserRepository creates a new UserRepository with the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// NewUserRepositoryWithPool creates a new UserRepository with a custom pool
// interface. This is primarily used for testing.
func NewUserRepositoryWithPool(pool UserPoolInterface) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by id.
// Returns nil, nil if the user is not found (service layer handles this).
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT id, email, loyalty_points, membership_tier, created_at FROM users WHERE id = $1`

	var user model.User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.LoyaltyPoints,
		&user.MembershipTier,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get user by id %s: %w", id, err)
	}
	return &user, nil
}

// GetForUpdate retrieves a user with a row lock (SELECT FOR UPDATE).
// The lock is held until the transaction completes, which serializes all
// balance mutations for this user.
// Returns service.ErrUserNotFound if the user doesn't exist.
func (r *UserRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.User, error) {
	query := `SELECT id, email, loyalty_points, membership_tier, created_at FROM users WHERE id = $1 FOR UPDATE`

	var user model.User
	err := tx.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.LoyaltyPoints,
		&user.MembershipTier,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user for update %s: %w", id, err)
	}
	return &user, nil
}

// UpdateBalance sets a user's cached point balance.
// Must be called within a transaction after locking the row.
func (r *UserRepository) UpdateBalance(ctx context.Context, tx database.TxQuerier, id string, balance int) error {
	query := `UPDATE users SET loyalty_points = $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, id, balance)
	if err != nil {
		return fmt.Errorf("update balance for user %s: %w", id, err)
	}
	return nil
}

// UpdateTier sets a user's membership tier.
// Must be called within a transaction after locking the row.
func (r *UserRepository) UpdateTier(ctx context.Context, tx database.TxQuerier, id, tier string) error {
	query := `UPDATE users SET membership_tier = $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, id, tier)
	if err != nil {
		return fmt.Errorf("update tier for user %s: %w", id, err)
	}
	return nil
}
