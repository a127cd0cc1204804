// Package loyalty contains the pure domain logic of the loyalty program:
// the distance-to-points formula, the membership tier catalog and resolver,
// and the redemption catalog with its validator. Nothing in this package
// touches storage; every function is deterministic.
package loyalty

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDistance is returned when a negative distance is supplied.
var ErrInvalidDistance = errors.New("distance must be non-negative")

// DistanceBand classifies a single trip's length for the earning formula.
// It is unrelated to membership tiers, which classify cumulative balance.
type DistanceBand string

const (
	BandBronze DistanceBand = "bronze"
	BandSilver DistanceBand = "silver"
	BandGold   DistanceBand = "gold"
)

// PointsBreakdown is the result of the earning formula for one trip:
// the base points before any tier multiplier, the band the distance fell
// into, and a human-readable rendering of the formula for client display.
type PointsBreakdown struct {
	Points  int
	Band    DistanceBand
	Formula string
}

// CalculatePoints converts driving distance into base loyalty points using
// the piecewise band formula. Results are truncated via floor. The branches
// are continuous at the band boundaries: 20km yields 60 on both the bronze
// and silver formulas, 50km yields 180 on both silver and gold.
func CalculatePoints(kilometers float64) (PointsBreakdown, error) {
	if kilometers < 0 {
		return PointsBreakdown{}, ErrInvalidDistance
	}

	switch {
	case kilometers <= 20:
		return PointsBreakdown{
			Points:  int(math.Floor(3 * kilometers)),
			Band:    BandBronze,
			Formula: fmt.Sprintf("3 x %gkm", kilometers),
		}, nil
	case kilometers <= 50:
		return PointsBreakdown{
			Points:  int(math.Floor(60 + 4*(kilometers-20))),
			Band:    BandSilver,
			Formula: fmt.Sprintf("60 + 4 x (%gkm - 20km)", kilometers),
		}, nil
	default:
		return PointsBreakdown{
			Points:  int(math.Floor(180 + 5*(kilometers-50))),
			Band:    BandGold,
			Formula: fmt.Sprintf("180 + 5 x (%gkm - 50km)", kilometers),
		}, nil
	}
}
