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

// CarRepository provides data access for the rental fleet using pgx.
// All of its methods run inside the booking-completion transaction, so it
// holds no pool of its own.
type CarRepository struct{}

// NewCarRepository creates a new CarRepository.
func NewCarRepository(_ *pgxpool.Pool) *CarRepository {
	return &CarRepository{}
}

// GetForUpdate retrieves a car with a row lock (SELECT FOR UPDATE).
// Returns service.ErrCarNotFound if the car doesn't exist.
func (r *CarRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Car, error) {
	query := `SELECT id, make, model, rental_status FROM cars WHERE id = $1 FOR UPDATE`

	var car model.Car
	err := tx.QueryRow(ctx, query, id).Scan(
		&car.ID,
		&car.Make,
		&car.Model,
		&car.RentalStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCarNotFound
		}
		return nil, fmt.Errorf("get car for update %s: %w", id, err)
	}
	return &car, nil
}

// UpdateRentalStatus sets a car's availability status.
// Must be called within a transaction after locking the row.
func (r *CarRepository) UpdateRentalStatus(ctx context.Context, tx database.TxQuerier, id string, status model.RentalStatus) error {
	query := `UPDATE cars SET rental_status = $2 WHERE id = $1`

	_, err := tx.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("update rental status for car %s: %w", id, err)
	}
	return nil
}
