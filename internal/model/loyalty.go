package model

import (
	"time"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/loyalty"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	KindEarned   TransactionKind = "EARNED"
	KindRedeemed TransactionKind = "REDEEMED"
	KindBonus    TransactionKind = "BONUS"
)

// LoyaltyTransaction is a single immutable entry in the points ledger.
// Points is signed: positive for EARNED/BONUS, negative for REDEEMED.
// The running sum of a user's entries equals their balance.
type LoyaltyTransaction struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Points           int             `json:"points"`
	Kind             TransactionKind `json:"kind"`
	Description      string          `json:"description"`
	RelatedBookingID *string         `json:"related_booking_id,omitempty"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// LoyaltyReward describes the points awarded by a booking completion.
type LoyaltyReward struct {
	PointsEarned  int     `json:"points_earned"`
	BasePoints    int     `json:"base_points"`
	DistanceBand  string  `json:"distance_band"`
	Formula       string  `json:"formula"`
	Multiplier    float64 `json:"multiplier"`
	NewBalance    int     `json:"new_balance"`
	TransactionID string  `json:"transaction_id"`
}

// RedeemRequest is the DTO for POST /api/loyalty/redeem.
type RedeemRequest struct {
	RedemptionID string `json:"redemption_id" validate:"required,notblank,max=64"`
}

// RedemptionResult is the API response DTO for a successful redemption.
type RedemptionResult struct {
	TransactionID   string    `json:"transaction_id"`
	OptionID        string    `json:"option_id"`
	Label           string    `json:"label"`
	PointsDeducted  int       `json:"points_deducted"`
	RemainingPoints int       `json:"remaining_points"`
	RedeemedAt      time.Time `json:"redeemed_at"`
}

// TierProgress describes how far the user is from the next membership tier.
// NextTier is empty when the user already holds the top tier.
type TierProgress struct {
	NextTier     string `json:"next_tier,omitempty"`
	PointsNeeded int    `json:"points_needed"`
}

// LoyaltySummary is the API response DTO for GET /api/loyalty.
type LoyaltySummary struct {
	Balance           int                        `json:"balance"`
	MembershipTier    string                     `json:"membership_tier"`
	Multiplier        float64                    `json:"multiplier"`
	TierProgress      TierProgress               `json:"tier_progress"`
	Transactions      []LoyaltyTransaction       `json:"transactions"`
	TierCatalog       []loyalty.Tier             `json:"tier_catalog"`
	RedemptionCatalog []loyalty.RedemptionOption `json:"redemption_catalog"`
	AffordableOptions []loyalty.RedemptionOption `json:"affordable_options"`
}
