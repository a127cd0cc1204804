package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/loyalty"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/model"
	"github.com/InugamiDev/car-rental-ooad-sub000/pkg/database"
)

// historyLimit bounds the transaction history returned by Summary.
const historyLimit = 20

// LoyaltyService provides redemption and the loyalty account summary.
type LoyaltyService struct {
	pool     database.TxBeginner
	userRepo UserRepositoryInterface
	txnRepo  LoyaltyTransactionRepositoryInterface
	ledger   LedgerInterface
}

// NewLoyaltyService creates a new LoyaltyService with the given pool,
// repositories and ledger.
func NewLoyaltyService(pool *pgxpool.Pool, userRepo UserRepositoryInterface, txnRepo LoyaltyTransactionRepositoryInterface, ledger LedgerInterface) *LoyaltyService {
	return &LoyaltyService{
		pool:     pool,
		userRepo: userRepo,
		txnRepo:  txnRepo,
		ledger:   ledger,
	}
}

// NewLoyaltyServiceWithTxBeginner creates a LoyaltyService with a custom
// TxBeginner. Primarily used for testing.
func NewLoyaltyServiceWithTxBeginner(pool database.TxBeginner, userRepo UserRepositoryInterface, txnRepo LoyaltyTransactionRepositoryInterface, ledger LedgerInterface) *LoyaltyService {
	return &LoyaltyService{
		pool:     pool,
		userRepo: userRepo,
		txnRepo:  txnRepo,
		ledger:   ledger,
	}
}

// Redeem exchanges points for a redemption option in one transaction.
// The balance is re-read under the user row lock inside the transaction, so
// a redemption that looked affordable on a stale read still fails with
// insufficient points if concurrent spending got there first.
// Returns:
//   - ErrUserNotFound if the user doesn't exist
//   - loyalty.ErrUnknownOption if the id matches no catalog entry
//   - *loyalty.InsufficientPointsError if the balance doesn't cover the cost
func (s *LoyaltyService) Redeem(ctx context.Context, userID, redemptionID string) (*model.RedemptionResult, error) {
	var result *model.RedemptionResult

	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		user, err := s.userRepo.GetForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}

		option, err := loyalty.ValidateRedemption(user.LoyaltyPoints, redemptionID)
		if err != nil {
			return err
		}

		deducted, err := s.ledger.Deduct(ctx, tx, userID, option.PointsRequired, model.KindRedeemed, option.Label)
		if err != nil {
			return err
		}

		result = &model.RedemptionResult{
			TransactionID:   deducted.TransactionID,
			OptionID:        option.ID,
			Label:           option.Label,
			PointsDeducted:  option.PointsRequired,
			RemainingPoints: deducted.NewBalance,
			RedeemedAt:      time.Now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Summary returns the loyalty account view for GET /api/loyalty: balance,
// tier, next-tier progress, bounded history (most recent first), both
// catalogs and the options the current balance covers.
// Returns ErrUserNotFound if the user doesn't exist.
func (s *LoyaltyService) Summary(ctx context.Context, userID string) (*model.LoyaltySummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	txns, err := s.txnRepo.ListByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	tier := loyalty.ResolveTier(user.LoyaltyPoints)
	progress := model.TierProgress{}
	if next, needed := loyalty.NextTier(user.LoyaltyPoints); next != nil {
		progress.NextTier = next.Name
		progress.PointsNeeded = needed
	}

	return &model.LoyaltySummary{
		Balance:           user.LoyaltyPoints,
		MembershipTier:    tier.Name,
		Multiplier:        tier.Multiplier,
		TierProgress:      progress,
		Transactions:      txns,
		TierCatalog:       loyalty.TierCatalog(),
		RedemptionCatalog: loyalty.RedemptionCatalog(),
		AffordableOptions: loyalty.AffordableOptions(user.LoyaltyPoints),
	}, nil
}
