package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/loyalty"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/model"
	"github.com/InugamiDev/car-rental-ooad-sub000/pkg/database"
)

// UserRepositoryInterface defines the interface for user data access.
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.User, error)
	UpdateBalance(ctx context.Context, tx database.TxQuerier, id string, balance int) error
	UpdateTier(ctx context.Context, tx database.TxQuerier, id, tier string) error
}

// LoyaltyTransactionRepositoryInterface defines the interface for ledger data access.
type LoyaltyTransactionRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, txn *model.LoyaltyTransaction) error
	ListByUser(ctx context.Context, userID string, limit int) ([]model.LoyaltyTransaction, error)
}

// LedgerInterface is the mutation surface the orchestration services depend
// on. Satisfied by LedgerService; mocked in tests.
type LedgerInterface interface {
	Award(ctx context.Context, tx database.TxQuerier, userID string, amount int, kind model.TransactionKind, description string, relatedBookingID *string) (*AwardResult, error)
	Deduct(ctx context.Context, tx database.TxQuerier, userID string, amount int, kind model.TransactionKind, description string) (*DeductResult, error)
}

// AwardResult is the outcome of a successful award.
type AwardResult struct {
	NewBalance    int
	NewTier       string
	TransactionID string
}

// DeductResult is the outcome of a successful deduction.
type DeductResult struct {
	NewBalance    int
	TransactionID string
}

// LedgerService is the only component permitted to mutate a user's balance
// and tier and to append to the transaction log. Both methods take the
// caller's transaction: the caller owns the atomic scope, and the user row
// lock acquired here is held until that scope commits or rolls back.
type LedgerService struct {
	userRepo UserRepositoryInterface
	txnRepo  LoyaltyTransactionRepositoryInterface
}

// NewLedgerService creates a new LedgerService with the given repositories.
func NewLedgerService(userRepo UserRepositoryInterface, txnRepo LoyaltyTransactionRepositoryInterface) *LedgerService {
	return &LedgerService{userRepo: userRepo, txnRepo: txnRepo}
}

// Award adds points to a user's balance, appends a positive ledger entry and
// re-resolves the membership tier from the new balance.
// A non-positive amount is a no-op: nothing is recorded and a nil result is
// returned. Returns ErrUserNotFound if the user doesn't exist.
func (s *LedgerService) Award(ctx context.Context, tx database.TxQuerier, userID string, amount int, kind model.TransactionKind, description string, relatedBookingID *string) (*AwardResult, error) {
	if amount <= 0 {
		return nil, nil // award is only meaningful for positive amounts
	}

	user, err := s.userRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	newBalance := user.LoyaltyPoints + amount
	if err := s.userRepo.UpdateBalance(ctx, tx, userID, newBalance); err != nil {
		return nil, fmt.Errorf("award update balance: %w", err)
	}

	txn := &model.LoyaltyTransaction{
		ID:               uuid.NewString(),
		UserID:           userID,
		Points:           amount,
		Kind:             kind,
		Description:      description,
		RelatedBookingID: relatedBookingID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.txnRepo.Insert(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("award append transaction: %w", err)
	}

	newTier := loyalty.ResolveTier(newBalance).Name
	if newTier != user.MembershipTier {
		if err := s.userRepo.UpdateTier(ctx, tx, userID, newTier); err != nil {
			return nil, fmt.Errorf("award update tier: %w", err)
		}
	}

	return &AwardResult{
		NewBalance:    newBalance,
		NewTier:       newTier,
		TransactionID: txn.ID,
	}, nil
}

// Deduct removes points from a user's balance and appends a negative ledger
// entry. Sufficiency is checked against the balance read under the row lock,
// inside the caller's transaction, so two concurrent deductions can never
// both pass a stale check. Returns a *loyalty.InsufficientPointsError when
// the balance doesn't cover the amount.
func (s *LedgerService) Deduct(ctx context.Context, tx database.TxQuerier, userID string, amount int, kind model.TransactionKind, description string) (*DeductResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidRequest
	}

	user, err := s.userRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if user.LoyaltyPoints < amount {
		return nil, &loyalty.InsufficientPointsError{
			Required:  amount,
			Available: user.LoyaltyPoints,
		}
	}

	newBalance := user.LoyaltyPoints - amount
	if err := s.userRepo.UpdateBalance(ctx, tx, userID, newBalance); err != nil {
		return nil, fmt.Errorf("deduct update balance: %w", err)
	}

	txn := &model.LoyaltyTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Points:      -amount,
		Kind:        kind,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.txnRepo.Insert(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("deduct append transaction: %w", err)
	}

	// Tier is a projection of the balance: spending below a threshold
	// demotes, keeping the stored tier consistent with the ledger.
	newTier := loyalty.ResolveTier(newBalance).Name
	if newTier != user.MembershipTier {
		if err := s.userRepo.UpdateTier(ctx, tx, userID, newTier); err != nil {
			return nil, fmt.Errorf("deduct update tier: %w", err)
		}
	}

	return &DeductResult{
		NewBalance:    newBalance,
		TransactionID: txn.ID,
	}, nil
}
