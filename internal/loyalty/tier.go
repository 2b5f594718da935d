// Package loyalty contains the pure business rules of the points program:
// the tier policy, ledger entry validation and balance math, and the
// customer-facing redemption session state machine.  Nothing in this
// package touches the database; persistence lives in the repository and
// service layers.
package loyalty

import (
    "errors"
    "fmt"
)

// Tier names in ascending order.  The ordinal of a tier gates reward
// eligibility: a reward with MinTier gold can only be redeemed by gold
// and platinum customers.
const (
    TierBronze   = "bronze"
    TierSilver   = "silver"
    TierGold     = "gold"
    TierPlatinum = "platinum"
)

// tierOrder maps tier names to their ordinal.  Bronze is the floor tier
// every customer starts in.
var tierOrder = map[string]int{
    TierBronze:   0,
    TierSilver:   1,
    TierGold:     2,
    TierPlatinum: 3,
}

// TierOrdinal returns the ordinal of a tier name and whether the name is
// known.  Unknown names report false so callers can reject bad input.
func TierOrdinal(tier string) (int, bool) {
    n, ok := tierOrder[tier]
    return n, ok
}

// Thresholds holds the lifetime-point thresholds at which a customer
// enters each paid tier.  Bronze is implicitly 0.  The values are
// configuration, not hard-coded business fact, but must be strictly
// increasing for the progress computation to be well defined.
type Thresholds struct {
    Silver   int64 // lifetime points required for silver
    Gold     int64 // lifetime points required for gold
    Platinum int64 // lifetime points required for platinum
}

// DefaultThresholds returns the thresholds used when no environment
// overrides are configured.
func DefaultThresholds() Thresholds {
    return Thresholds{Silver: 100, Gold: 500, Platinum: 1000}
}

// Validate reports an error unless 0 < Silver < Gold < Platinum.
func (t Thresholds) Validate() error {
    if t.Silver <= 0 || t.Gold <= t.Silver || t.Platinum <= t.Gold {
        return fmt.Errorf("tier thresholds must be strictly increasing: silver=%d gold=%d platinum=%d",
            t.Silver, t.Gold, t.Platinum)
    }
    return nil
}

// Classify maps a lifetime point total to the highest tier whose threshold
// is at or below it, together with the percent progress toward the next
// tier.  Progress is floor(100*(lp-cur)/(next-cur)) clamped to [0,100] and
// is 0 at or above the platinum threshold.  lifetimePoints must be
// non-negative; negative input is a caller contract violation and is
// clamped to zero.
func Classify(t Thresholds, lifetimePoints int64) (string, uint8) {
    if lifetimePoints < 0 {
        lifetimePoints = 0
    }
    // Walk the ladder from the top down to find the current tier and the
    // bounds of the bracket the customer sits in.
    switch {
    case lifetimePoints >= t.Platinum:
        return TierPlatinum, 0
    case lifetimePoints >= t.Gold:
        return TierGold, progress(lifetimePoints, t.Gold, t.Platinum)
    case lifetimePoints >= t.Silver:
        return TierSilver, progress(lifetimePoints, t.Silver, t.Gold)
    default:
        return TierBronze, progress(lifetimePoints, 0, t.Silver)
    }
}

// progress computes floor(100*(lp-cur)/(next-cur)) clamped to [0,100].
func progress(lp, cur, next int64) uint8 {
    if next <= cur {
        return 0
    }
    p := 100 * (lp - cur) / (next - cur)
    if p < 0 {
        p = 0
    }
    if p > 100 {
        p = 100
    }
    return uint8(p)
}

// ErrUnknownTier is returned when a reward references a tier name that is
// not part of the ladder.
var ErrUnknownTier = errors.New("unknown tier")

// MeetsTier reports whether a customer in customerTier may redeem a reward
// gated at minTier.  Unknown names return ErrUnknownTier.
func MeetsTier(customerTier, minTier string) (bool, error) {
    c, ok := tierOrder[customerTier]
    if !ok {
        return false, ErrUnknownTier
    }
    m, ok := tierOrder[minTier]
    if !ok {
        return false, ErrUnknownTier
    }
    return c >= m, nil
}
