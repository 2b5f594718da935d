package model

import "time"

// Redemption records a settled reward redemption in the `redemptions`
// table.  It is written in the same transaction as the ledger entry and
// balance deduction, and carries the opaque code the customer presents to
// staff.  ConfirmedAt is set when staff verify the code at pickup.
//
// Fields:
//  ID            – primary key identifier.
//  RestaurantID  – restaurant scope of the code.
//  CustomerID    – customer who redeemed.
//  RewardID      – redeemed reward.
//  TransactionID – the redemption ledger entry this row settles.
//  Code          – opaque, human-presentable redemption code.
//  ConfirmedAt   – staff confirmation timestamp (null until confirmed).
//  CreatedAt     – creation timestamp.
type Redemption struct {
    ID            uint64     // redemptions.id
    RestaurantID  uint64     // redemptions.restaurant_id
    CustomerID    uint64     // redemptions.customer_id
    RewardID      uint64     // redemptions.reward_id
    TransactionID uint64     // redemptions.transaction_id
    Code          string     // redemptions.code
    ConfirmedAt   *time.Time // redemptions.confirmed_at (nullable)
    CreatedAt     time.Time  // redemptions.created_at
}
