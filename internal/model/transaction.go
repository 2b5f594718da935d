package model

import "time"

// Entry types recorded in the transactions ledger.  Accrual types carry a
// positive points delta; TxRedemption carries a negative delta and a reward
// reference.  Rows are immutable once inserted.
const (
    TxPurchase   = "purchase"   // points earned from a visit/purchase
    TxBonus      = "bonus"      // staff-granted bonus points
    TxReferral   = "referral"   // points for referring another customer
    TxSignup     = "signup"     // enrollment welcome bonus
    TxRedemption = "redemption" // points spent on a reward
)

// Transaction is one immutable row of the points ledger (`transactions`
// table).  The customer's balances are reconstructable from these rows:
// the spendable balance is the sum of all deltas, the lifetime total the
// sum of positive deltas only.
//
// Fields:
//  ID              – primary key identifier.
//  CustomerID      – owning customer.
//  Type            – one of the Tx* constants above.
//  Points          – signed delta; positive for accruals, negative for redemptions.
//  AmountSpentCents– purchase amount that produced the accrual (nullable).
//  RewardID        – redeemed reward (set only for redemption rows).
//  Description     – human-readable note shown in the customer's history.
//  CreatedAt       – insertion timestamp.
type Transaction struct {
    ID               uint64    // transactions.id
    CustomerID       uint64    // transactions.customer_id
    Type             string    // transactions.type
    Points           int64     // transactions.points
    AmountSpentCents *uint64   // transactions.amount_spent_cents (nullable)
    RewardID         *uint64   // transactions.reward_id (nullable)
    Description      string    // transactions.description
    CreatedAt        time.Time // transactions.created_at
}

// IsAccrualType reports whether t is one of the accrual entry types.
func IsAccrualType(t string) bool {
    switch t {
    case TxPurchase, TxBonus, TxReferral, TxSignup:
        return true
    }
    return false
}
