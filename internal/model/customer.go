package model

import "time"

// Customer represents an enrolled loyalty-program member as stored in the
// `customers` table.  The point totals and tier fields are a denormalized
// cache of the transactions ledger: TotalPoints is the spendable balance,
// LifetimePoints the cumulative accrual total that drives the tier.
// Redemptions reduce TotalPoints only; LifetimePoints never decreases.
//
// Fields:
//  ID             – primary key identifier.
//  RestaurantID   – restaurant that owns this customer record.
//  Name           – display name.
//  Email          – contact email, unique per restaurant.
//  Phone          – optional contact phone.
//  TotalPoints    – spendable balance, never negative.
//  LifetimePoints – cumulative accruals, monotonically non-decreasing.
//  CurrentTier    – derived tier name (bronze/silver/gold/platinum).
//  TierProgress   – derived percent (0–100) toward the next tier.
//  VisitCount     – number of recorded visits.
//  TotalSpentCents– cumulative purchase amount in cents.
//  CreatedAt      – timestamp of enrollment.
//  UpdatedAt      – timestamp of last update.
type Customer struct {
    ID              uint64    // customers.id
    RestaurantID    uint64    // customers.restaurant_id
    Name            string    // customers.name
    Email           string    // customers.email
    Phone           *string   // customers.phone (nullable)
    TotalPoints     int64     // customers.total_points
    LifetimePoints  int64     // customers.lifetime_points
    CurrentTier     string    // customers.current_tier
    TierProgress    uint8     // customers.tier_progress
    VisitCount      uint32    // customers.visit_count
    TotalSpentCents uint64    // customers.total_spent_cents
    CreatedAt       time.Time // customers.created_at
    UpdatedAt       time.Time // customers.updated_at
}
