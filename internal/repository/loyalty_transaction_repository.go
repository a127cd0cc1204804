package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/model"
	"github.com/InugamiDev/car-rental-ooad-sub000/pkg/database"
)

// TransactionPoolInterface defines the database operations needed by
// LoyaltyTransactionRepository outside a transaction.
type TransactionPoolInterface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoyaltyTransactionRepository provides data access for the append-only
// points ledger. Rows are inserted once and never updated or deleted.
type LoyaltyTransactionRepository struct {
	pool TransactionPoolInterface
}

// NewLoyaltyTransactionRepository creates a new LoyaltyTransactionRepository
// with the given pool.
func NewLoyaltyTransactionRepository(pool *pgxpool.Pool) *LoyaltyTransactionRepository {
	return &LoyaltyTransactionRepository{pool: pool}
}

// NewLoyaltyTransactionRepositoryWithPool creates a new
// LoyaltyTransactionRepository with a custom pool interface.
// This is primarily used for testing.
func NewLoyaltyTransactionRepositoryWithPool(pool TransactionPoolInterface) *LoyaltyTransactionRepository {
	return &LoyaltyTransactionRepository{pool: pool}
}

// Insert appends a ledger entry within a transaction.
func (r *LoyaltyTransactionRepository) Insert(ctx context.Context, tx database.TxQuerier, txn *model.LoyaltyTransaction) error {
	query := `INSERT INTO loyalty_transactions
		(id, user_id, points, kind, description, related_booking_id, expiry_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		txn.ID, txn.UserID, txn.Points, string(txn.Kind), txn.Description,
		txn.RelatedBookingID, txn.ExpiryDate, txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert loyalty transaction: %w", err)
	}
	return nil
}

// ListByUser retrieves a user's most recent ledger entries, newest first,
// bounded by limit. On success, returns an empty slice (not nil) when the
// user has no history.
func (r *LoyaltyTransactionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]model.LoyaltyTransaction, error) {
	query := `SELECT id, user_id, points, kind, description, related_booking_id, expiry_date, created_at
		FROM loyalty_transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var txns []model.LoyaltyTransaction
	for rows.Next() {
		var txn model.LoyaltyTransaction
		if err := rows.Scan(
			&txn.ID, &txn.UserID, &txn.Points, &txn.Kind, &txn.Description,
			&txn.RelatedBookingID, &txn.ExpiryDate, &txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan loyalty transaction: %w", err)
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	// Return empty slice, not nil
	if txns == nil {
		txns = []model.LoyaltyTransaction{}
	}

	return txns, nil
}
