package service

import (
    "context"
    "database/sql"
    "strings"

    "github.com/okanerk/restaurant-loyalty/internal/config"
    "github.com/okanerk/restaurant-loyalty/internal/loyalty"
    "github.com/okanerk/restaurant-loyalty/internal/model"
    "github.com/okanerk/restaurant-loyalty/internal/repository"
)

// AccrualService records point-earning events: enrollment (signup bonus),
// visits/purchases and staff-granted bonus or referral points.  Every
// accrual appends a ledger entry and, inside the same transaction, updates
// the customer's cached aggregates with the tier and progress recomputed
// from the new lifetime total, so the cache can never drift from the
// ledger.
type AccrualService struct {
    db        *sql.DB
    customers *repository.CustomerRepo
    ledger    *repository.LedgerRepo
    program   config.ProgramConfig
}

// NewAccrualService constructs the service.  db, customers and ledger
// must be non-nil.
func NewAccrualService(db *sql.DB, customers *repository.CustomerRepo, ledger *repository.LedgerRepo, program config.ProgramConfig) *AccrualService {
    if db == nil || customers == nil || ledger == nil {
        panic("nil dependency passed to NewAccrualService")
    }
    return &AccrualService{db: db, customers: customers, ledger: ledger, program: program}
}

// PurchasePoints converts a purchase amount to earned points using the
// configured earn rate.  Pure; exposed for the handler to preview and for
// tests.
func PurchasePoints(amountCents uint64, pointsPerDollar int64) int64 {
    return int64(amountCents) * pointsPerDollar / 100
}

// Enroll creates a customer and, when a signup bonus is configured,
// appends the signup ledger entry in the same transaction.  The returned
// customer carries the post-bonus aggregates.  A duplicate email within
// the restaurant maps to repository.ErrEmailExists.
func (s *AccrualService) Enroll(ctx context.Context, restaurantID uint64, name, email string, phone *string) (*model.Customer, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    tier, prog := loyalty.Classify(s.program.Tiers, 0)
    cust := &model.Customer{
        RestaurantID: restaurantID,
        Name:         name,
        Email:        email,
        Phone:        phone,
        CurrentTier:  tier,
        TierProgress: prog,
    }
    if err := s.customers.CreateTx(ctx, tx, cust); err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return nil, repository.ErrEmailExists
        }
        return nil, err
    }

    if bonus := s.program.SignupBonusPoints; bonus > 0 {
        entry := &model.Transaction{
            CustomerID:  cust.ID,
            Type:        model.TxSignup,
            Points:      bonus,
            Description: "Welcome bonus",
        }
        if err := s.ledger.AppendTx(ctx, tx, entry); err != nil {
            return nil, err
        }
        tier, prog = loyalty.Classify(s.program.Tiers, bonus)
        if err := s.customers.ApplyAccrualTx(ctx, tx, cust.ID, bonus, tier, prog, false, 0); err != nil {
            return nil, err
        }
        cust.TotalPoints = bonus
        cust.LifetimePoints = bonus
        cust.CurrentTier = tier
        cust.TierProgress = prog
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return cust, nil
}

// RecordPurchase appends a purchase accrual for a visit.  Points are
// derived from the amount via the earn rate; a purchase too small to earn
// a single point is rejected as an invalid entry rather than recorded as
// a zero-point row.  Visit count and total spent are bumped alongside.
func (s *AccrualService) RecordPurchase(ctx context.Context, restaurantID, customerID, amountCents uint64, note string) (*model.Transaction, error) {
    points := PurchasePoints(amountCents, s.program.PointsPerDollar)
    if points <= 0 {
        return nil, loyalty.ErrInvalidEntry
    }
    if note == "" {
        note = "Visit purchase"
    }
    entry := &model.Transaction{
        CustomerID:       customerID,
        Type:             model.TxPurchase,
        Points:           points,
        AmountSpentCents: &amountCents,
        Description:      note,
    }
    return entry, s.commitAccrual(ctx, restaurantID, customerID, entry, true, amountCents)
}

// GrantPoints appends a staff-granted bonus or referral accrual.  Other
// entry types, and non-positive point grants, are rejected as invalid.
func (s *AccrualService) GrantPoints(ctx context.Context, restaurantID, customerID uint64, entryType string, points int64, note string) (*model.Transaction, error) {
    if entryType != model.TxBonus && entryType != model.TxReferral {
        return nil, loyalty.ErrInvalidEntry
    }
    if note == "" {
        note = "Staff granted points"
    }
    entry := &model.Transaction{
        CustomerID:  customerID,
        Type:        entryType,
        Points:      points,
        Description: note,
    }
    return entry, s.commitAccrual(ctx, restaurantID, customerID, entry, false, 0)
}

// commitAccrual runs one accrual transaction: lock the customer row,
// append the ledger entry, recompute the tier from the new lifetime total
// and update the cached aggregates.
func (s *AccrualService) commitAccrual(ctx context.Context, restaurantID, customerID uint64, entry *model.Transaction, visit bool, amountCents uint64) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    cust, err := s.customers.GetForUpdateTx(ctx, tx, restaurantID, customerID)
    if err != nil {
        return err
    }
    if err := s.ledger.AppendTx(ctx, tx, entry); err != nil {
        return err
    }
    tier, prog := loyalty.Classify(s.program.Tiers, cust.LifetimePoints+entry.Points)
    if err := s.customers.ApplyAccrualTx(ctx, tx, customerID, entry.Points, tier, prog, visit, amountCents); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
