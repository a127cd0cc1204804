package service

import (
	"errors"
	"fmt"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/model"
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrBookingNotFound is returned when a booking cannot be found
	ErrBookingNotFound = errors.New("booking not found")

	// ErrCarNotFound is returned when a booking references a missing car
	ErrCarNotFound = errors.New("car not found")

	// ErrForbidden is returned when a requester does not own the booking
	ErrForbidden = errors.New("booking belongs to another user")

	// ErrInvalidBookingState is returned when a booking is not in a completable status
	ErrInvalidBookingState = errors.New("booking is not in a completable state")

	// ErrInvalidRequest is returned when request data is invalid or incomplete
	ErrInvalidRequest = errors.New("invalid request")
)

// InvalidStateError carries the booking's current status for client display.
// Unwrap yields ErrInvalidBookingState.
type InvalidStateError struct {
	Status model.BookingStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("booking is not in a completable state: %s", e.Status)
}

func (e *InvalidStateError) Unwrap() error {
	return ErrInvalidBookingState
}
