package loyalty

import (
	"errors"
	"fmt"
)

// ErrUnknownOption is returned when a redemption id matches no catalog entry.
var ErrUnknownOption = errors.New("unknown redemption option")

// ErrInsufficientPoints is the sentinel behind InsufficientPointsError so
// callers can branch with errors.Is without caring about the details.
var ErrInsufficientPoints = errors.New("insufficient points")

// InsufficientPointsError carries the required vs. available points for
// client display. Unwrap yields ErrInsufficientPoints.
type InsufficientPointsError struct {
	Required  int
	Available int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: required %d, available %d", e.Required, e.Available)
}

func (e *InsufficientPointsError) Unwrap() error {
	return ErrInsufficientPoints
}

// RewardKind classifies what a redemption option grants.
type RewardKind string

const (
	RewardDiscount   RewardKind = "discount"
	RewardExtraHours RewardKind = "extra_hours"
)

// RedemptionOption is a redemption catalog entry: a fixed point cost
// exchanged for a discount amount or extra rental hours.
type RedemptionOption struct {
	ID             string     `json:"id"`
	PointsRequired int        `json:"points_required"`
	Kind           RewardKind `json:"kind"`
	Amount         float64    `json:"amount"`
	Label          string     `json:"label"`
}

// redemptionOptions is the redemption catalog. Built once; never mutated.
var redemptionOptions = [...]RedemptionOption{
	{ID: "discount-5", PointsRequired: 100, Kind: RewardDiscount, Amount: 5, Label: "$5 off your next rental"},
	{ID: "discount-15", PointsRequired: 250, Kind: RewardDiscount, Amount: 15, Label: "$15 off your next rental"},
	{ID: "discount-40", PointsRequired: 600, Kind: RewardDiscount, Amount: 40, Label: "$40 off your next rental"},
	{ID: "extra-3h", PointsRequired: 150, Kind: RewardExtraHours, Amount: 3, Label: "3 extra rental hours"},
	{ID: "extra-12h", PointsRequired: 400, Kind: RewardExtraHours, Amount: 12, Label: "12 extra rental hours"},
}

// RedemptionCatalog returns a copy of the redemption catalog.
func RedemptionCatalog() []RedemptionOption {
	out := make([]RedemptionOption, len(redemptionOptions))
	copy(out, redemptionOptions[:])
	return out
}

// AffordableOptions returns the subset of the catalog the balance covers.
func AffordableOptions(balance int) []RedemptionOption {
	out := []RedemptionOption{}
	for _, opt := range redemptionOptions {
		if balance >= opt.PointsRequired {
			out = append(out, opt)
		}
	}
	return out
}

// ValidateRedemption checks a redemption request against the catalog and the
// given balance. It performs no mutation: the caller is responsible for
// re-validating against a freshly read balance inside its transaction.
func ValidateRedemption(balance int, redemptionID string) (RedemptionOption, error) {
	for _, opt := range redemptionOptions {
		if opt.ID == redemptionID {
			if balance < opt.PointsRequired {
				return RedemptionOption{}, &InsufficientPointsError{
					Required:  opt.PointsRequired,
					Available: balance,
				}
			}
			return opt, nil
		}
	}
	return RedemptionOption{}, ErrUnknownOption
}
