package model

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "PENDING"
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// Completable reports whether a booking in this status may transition to COMPLETED.
func (s BookingStatus) Completable() bool {
	return s == BookingConfirmed || s == BookingInProgress
}

// RentalStatus is the availability state of a car.
type RentalStatus string

const (
	CarAvailable   RentalStatus = "AVAILABLE"
	CarRented      RentalStatus = "RENTED"
	CarMaintenance RentalStatus = "MAINTENANCE"
	CarReserved    RentalStatus = "RESERVED"
)

// Booking represents a rental booking. Status is mutated only through the
// defined lifecycle transitions; completion happens exactly once.
type Booking struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	CarID     string        `json:"car_id"`
	Status    BookingStatus `json:"status"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	TotalCost float64       `json:"total_cost"`
}

// Car represents a vehicle in the rental fleet.
type Car struct {
	ID           string       `json:"id"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	RentalStatus RentalStatus `json:"rental_status"`
}

// CompleteBookingRequest is the DTO for POST /api/bookings/:id/complete.
// Kilometers is optional; when absent or zero the booking completes without
// a loyalty award.
type CompleteBookingRequest struct {
	Kilometers    *float64 `json:"kilometers" validate:"omitempty,gte=0"`
	ActualEndDate *string  `json:"actual_end_date" validate:"omitempty,max=64"`
	Notes         *string  `json:"notes" validate:"omitempty,max=1024"`
}

// CompleteBookingResponse is the API response DTO for booking completion.
// LoyaltyReward is null when no distance was reported.
type CompleteBookingResponse struct {
	Booking       *Booking       `json:"booking"`
	LoyaltyReward *LoyaltyReward `json:"loyalty_reward"`
}
