package model

import "time"

// User represents a rental customer enrolled in the loyalty program.
// LoyaltyPoints is a cached projection of the transaction log; MembershipTier
// is always the tier resolved from LoyaltyPoints.
type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	LoyaltyPoints  int       `json:"loyalty_points"`
	MembershipTier string    `json:"membership_tier"`
	CreatedAt      time.Time `json:"-"` // Not exposed in API
}
