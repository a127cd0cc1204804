package loyalty

import "math"

// Tier is a membership tier catalog entry. A user holds the highest tier
// whose threshold their balance meets or exceeds.
type Tier struct {
	Name       string   `json:"name"`
	Threshold  int      `json:"threshold"`
	Multiplier float64  `json:"multiplier"`
	Benefits   []string `json:"benefits"`
}

// tiers is the membership tier catalog, ordered by ascending threshold.
// Built once; never mutated at runtime.
var tiers = [...]Tier{
	{
		Name:       "Bronze",
		Threshold:  0,
		Multiplier: 1.0,
		Benefits:   []string{"Member pricing", "Birthday bonus points"},
	},
	{
		Name:       "Silver",
		Threshold:  500,
		Multiplier: 1.25,
		Benefits:   []string{"Member pricing", "Birthday bonus points", "Free child seat"},
	},
	{
		Name:       "Gold",
		Threshold:  1500,
		Multiplier: 1.5,
		Benefits:   []string{"Member pricing", "Birthday bonus points", "Free child seat", "Priority pickup"},
	},
	{
		Name:       "Platinum",
		Threshold:  5000,
		Multiplier: 2.0,
		Benefits:   []string{"Member pricing", "Birthday bonus points", "Free child seat", "Priority pickup", "Free upgrades"},
	},
}

// TierCatalog returns a copy of the membership tier catalog in ascending
// threshold order.
func TierCatalog() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers[:])
	return out
}

// ResolveTier returns the highest tier whose threshold the balance meets.
// A negative balance cannot occur under ledger invariants; it would resolve
// to the base tier.
func ResolveTier(balance int) Tier {
	current := tiers[0]
	for _, t := range tiers {
		if balance >= t.Threshold {
			current = t
		}
	}
	return current
}

// NextTier returns the next tier above the balance and the points still
// needed to reach it. Returns nil when the balance already meets the top
// tier's threshold.
func NextTier(balance int) (*Tier, int) {
	for _, t := range tiers {
		if balance < t.Threshold {
			next := t
			return &next, t.Threshold - balance
		}
	}
	return nil, 0
}

// ApplyMultiplier scales base points by the tier multiplier for the given
// balance, truncating via floor. The balance is the user's balance before
// the new points are added: the tier earned so far determines the bonus on
// the new earning event.
func ApplyMultiplier(basePoints, balance int) int {
	return int(math.Floor(float64(basePoints) * ResolveTier(balance).Multiplier))
}
