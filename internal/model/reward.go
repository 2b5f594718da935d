package model

import "time"

// Reward represents a redeemable catalog item as stored in the `rewards`
// table.  A reward is immutable once published except for the IsActive
// flag, which staff may toggle to control availability.  MinTier gates
// eligibility: only customers whose current tier ordinal is at least
// MinTier's ordinal may redeem it.
//
// Fields:
//  ID             – primary key identifier.
//  RestaurantID   – restaurant that owns this reward.
//  Name           – display name.
//  Description    – free-form description shown to customers.
//  PointsRequired – positive point cost of one redemption.
//  Category       – grouping label (e.g. "food", "drink", "merch").
//  MinTier        – minimum tier name required to redeem.
//  IsActive       – whether the reward is currently offered.
//  CreatedAt      – creation timestamp.
type Reward struct {
    ID             uint64    // rewards.id
    RestaurantID   uint64    // rewards.restaurant_id
    Name           string    // rewards.name
    Description    string    // rewards.description
    PointsRequired int64     // rewards.points_required
    Category       string    // rewards.category
    MinTier        string    // rewards.min_tier
    IsActive       bool      // rewards.is_active
    CreatedAt      time.Time // rewards.created_at
}
