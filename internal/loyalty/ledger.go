package loyalty

import (
    "errors"

    "github.com/okanerk/restaurant-loyalty/internal/model"
)

// ErrInvalidEntry is returned when a ledger entry violates the shape rules
// for its type: accrual entries must carry a positive delta, redemption
// entries a negative delta and a reward reference.
var ErrInvalidEntry = errors.New("invalid ledger entry")

// ValidateEntry checks a transaction before it is appended to the ledger.
// Entries are immutable once inserted, so malformed rows must be rejected
// here rather than repaired later.
func ValidateEntry(tx *model.Transaction) error {
    switch {
    case model.IsAccrualType(tx.Type):
        if tx.Points <= 0 {
            return ErrInvalidEntry
        }
    case tx.Type == model.TxRedemption:
        if tx.Points >= 0 || tx.RewardID == nil {
            return ErrInvalidEntry
        }
    default:
        return ErrInvalidEntry
    }
    return nil
}

// SumBalances reconstructs a customer's balances from ledger entries.
// The spendable balance is the sum of all deltas; the lifetime total is
// the sum of positive deltas only, so redemptions never reduce it.  The
// ledger is the source of truth: the aggregate columns on the customer
// row are a cache of these sums.
func SumBalances(entries []model.Transaction) (current, lifetime int64) {
    for _, e := range entries {
        current += e.Points
        if e.Points > 0 {
            lifetime += e.Points
        }
    }
    return current, lifetime
}
