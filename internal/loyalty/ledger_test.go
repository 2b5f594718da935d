package loyalty

import (
    "testing"

    "github.com/okanerk/restaurant-loyalty/internal/model"
)

func u64(v uint64) *uint64 { return &v }

func TestValidateEntry(t *testing.T) {
    cases := []struct {
        name    string
        tx      model.Transaction
        wantErr bool
    }{
        {"purchase with positive delta", model.Transaction{Type: model.TxPurchase, Points: 10}, false},
        {"signup bonus", model.Transaction{Type: model.TxSignup, Points: 50}, false},
        {"referral", model.Transaction{Type: model.TxReferral, Points: 25}, false},
        {"zero-point accrual", model.Transaction{Type: model.TxBonus, Points: 0}, true},
        {"negative accrual", model.Transaction{Type: model.TxPurchase, Points: -5}, true},
        {"redemption with negative delta", model.Transaction{Type: model.TxRedemption, Points: -75, RewardID: u64(1)}, false},
        {"redemption with positive delta", model.Transaction{Type: model.TxRedemption, Points: 75, RewardID: u64(1)}, true},
        {"redemption with zero delta", model.Transaction{Type: model.TxRedemption, Points: 0, RewardID: u64(1)}, true},
        {"redemption without reward", model.Transaction{Type: model.TxRedemption, Points: -75}, true},
        {"unknown type", model.Transaction{Type: "chargeback", Points: 10}, true},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            err := ValidateEntry(&tc.tx)
            if (err != nil) != tc.wantErr {
                t.Fatalf("ValidateEntry() error = %v, wantErr = %v", err, tc.wantErr)
            }
        })
    }
}

func TestSumBalances(t *testing.T) {
    entries := []model.Transaction{
        {Type: model.TxSignup, Points: 50},
        {Type: model.TxPurchase, Points: 120},
        {Type: model.TxRedemption, Points: -75, RewardID: u64(1)},
        {Type: model.TxBonus, Points: 30},
        {Type: model.TxRedemption, Points: -50, RewardID: u64(2)},
        {Type: model.TxReferral, Points: 25},
    }
    current, lifetime := SumBalances(entries)
    if current != 100 {
        t.Fatalf("current = %d, want 100", current)
    }
    if lifetime != 225 {
        t.Fatalf("lifetime = %d, want 225", lifetime)
    }
}

func TestSumBalancesInterleavingInvariant(t *testing.T) {
    // Lifetime must equal the sum of positive deltas regardless of how
    // accruals and redemptions interleave, and current must equal the sum
    // of all deltas.
    base := []model.Transaction{
        {Type: model.TxPurchase, Points: 100},
        {Type: model.TxRedemption, Points: -40, RewardID: u64(1)},
        {Type: model.TxPurchase, Points: 60},
        {Type: model.TxRedemption, Points: -20, RewardID: u64(1)},
    }
    // Rotate through every cyclic interleaving of the same entries.
    for shift := 0; shift < len(base); shift++ {
        rotated := append(append([]model.Transaction{}, base[shift:]...), base[:shift]...)
        current, lifetime := SumBalances(rotated)
        if current != 100 {
            t.Fatalf("shift %d: current = %d, want 100", shift, current)
        }
        if lifetime != 160 {
            t.Fatalf("shift %d: lifetime = %d, want 160", shift, lifetime)
        }
    }
}

func TestSumBalancesEmpty(t *testing.T) {
    current, lifetime := SumBalances(nil)
    if current != 0 || lifetime != 0 {
        t.Fatalf("empty ledger = (%d, %d), want (0, 0)", current, lifetime)
    }
}
