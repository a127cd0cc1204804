package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/loyalty"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/model"
	"github.com/InugamiDev/car-rental-ooad-sub000/pkg/database"
)

// BookingRepositoryInterface defines the interface for booking data access.
type BookingRepositoryInterface interface {
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, tx database.TxQuerier, id string, status model.BookingStatus) error
}

// CarRepositoryInterface defines the interface for fleet data access.
type CarRepositoryInterface interface {
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Car, error)
	UpdateRentalStatus(ctx context.Context, tx database.TxQuerier, id string, status model.RentalStatus) error
}

// BookingService provides the booking completion transition.
type BookingService struct {
	pool        database.TxBeginner
	bookingRepo BookingRepositoryInterface
	carRepo     CarRepositoryInterface
	userRepo    UserRepositoryInterface
	ledger      LedgerInterface
}

// NewBookingService creates a new BookingService with the given pool,
// repositories and ledger.
func NewBookingService(pool *pgxpool.Pool, bookingRepo BookingRepositoryInterface, carRepo CarRepositoryInterface, userRepo UserRepositoryInterface, ledger LedgerInterface) *BookingService {
	return &BookingService{
		pool:        pool,
		bookingRepo: bookingRepo,
		carRepo:     carRepo,
		userRepo:    userRepo,
		ledger:      ledger,
	}
}

// NewBookingServiceWithTxBeginner creates a BookingService with a custom
// TxBeginner. Primarily used for testing.
func NewBookingServiceWithTxBeginner(pool database.TxBeginner, bookingRepo BookingRepositoryInterface, carRepo CarRepositoryInterface, userRepo UserRepositoryInterface, ledger LedgerInterface) *BookingService {
	return &BookingService{
		pool:        pool,
		bookingRepo: bookingRepo,
		carRepo:     carRepo,
		userRepo:    userRepo,
		ledger:      ledger,
	}
}

// Complete transitions a booking to COMPLETED, frees the car and awards
// loyalty points for the reported distance, all in one transaction.
// Preconditions are checked in order, each a distinct failure:
//   - loyalty.ErrInvalidDistance if kilometers is negative
//   - ErrBookingNotFound if the booking doesn't exist
//   - ErrForbidden if the requester doesn't own it
//   - *InvalidStateError if the status is not CONFIRMED or IN_PROGRESS
//     (this is what rejects completing the same booking twice)
//
// The tier multiplier is evaluated on the balance before the award: the tier
// earned so far determines the bonus, not the tier the new points unlock.
// When kilometers is nil or zero the booking completes without a reward.
// On any failure nothing is persisted.
func (s *BookingService) Complete(ctx context.Context, bookingID, requesterID string, kilometers *float64) (*model.CompleteBookingResponse, error) {
	if kilometers != nil && *kilometers < 0 {
		return nil, loyalty.ErrInvalidDistance
	}

	var resp *model.CompleteBookingResponse

	err := database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		booking, err := s.bookingRepo.GetForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if booking.UserID != requesterID {
			return ErrForbidden
		}
		if !booking.Status.Completable() {
			return &InvalidStateError{Status: booking.Status}
		}

		car, err := s.carRepo.GetForUpdate(ctx, tx, booking.CarID)
		if err != nil {
			return err
		}

		var breakdown loyalty.PointsBreakdown
		var multiplier float64
		finalPoints := 0
		if kilometers != nil && *kilometers > 0 {
			breakdown, err = loyalty.CalculatePoints(*kilometers)
			if err != nil {
				return err
			}

			user, err := s.userRepo.GetForUpdate(ctx, tx, booking.UserID)
			if err != nil {
				return err
			}
			multiplier = loyalty.ResolveTier(user.LoyaltyPoints).Multiplier
			finalPoints = loyalty.ApplyMultiplier(breakdown.Points, user.LoyaltyPoints)
		}

		if err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, model.BookingCompleted); err != nil {
			return err
		}
		booking.Status = model.BookingCompleted

		if err := s.carRepo.UpdateRentalStatus(ctx, tx, car.ID, model.CarAvailable); err != nil {
			return err
		}

		var reward *model.LoyaltyReward
		if finalPoints > 0 {
			description := fmt.Sprintf("Completed rental of %s %s", car.Make, car.Model)
			awarded, err := s.ledger.Award(ctx, tx, booking.UserID, finalPoints, model.KindEarned, description, &booking.ID)
			if err != nil {
				return err
			}
			reward = &model.LoyaltyReward{
				PointsEarned:  finalPoints,
				BasePoints:    breakdown.Points,
				DistanceBand:  string(breakdown.Band),
				Formula:       breakdown.Formula,
				Multiplier:    multiplier,
				NewBalance:    awarded.NewBalance,
				TransactionID: awarded.TransactionID,
			}
		}

		resp = &model.CompleteBookingResponse{Booking: booking, LoyaltyReward: reward}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
