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

// BookingRepository provides data access for bookings using pgx.
// Bookings are only read and mutated inside the completion transaction, so
// it holds no pool of its own.
type BookingRepository struct{}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(_ *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{}
}

const bookingColumns = `id, user_id, car_id, status, start_date, end_date, total_cost`

// GetForUpdate retrieves a booking with a row lock (SELECT FOR UPDATE).
// Locking the booking row makes the completion transition exactly-once:
// a concurrent completion waits here and then fails the status check.
// Returns service.ErrBookingNotFound if the booking doesn't exist.
func (r *BookingRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	booking, err := scanBooking(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking for update %s: %w", id, err)
	}
	return booking, nil
}

// UpdateStatus sets a booking's lifecycle status.
// Must be called within a transaction after locking the row.
func (r *BookingRepository) UpdateStatus(ctx context.Context, tx database.TxQuerier, id string, status model.BookingStatus) error {
	query := `UPDATE bookings SET status = $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("update status for booking %s: %w", id, err)
	}
	return nil
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.CarID,
		&booking.Status,
		&booking.StartDate,
		&booking.EndDate,
		&booking.TotalCost,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
