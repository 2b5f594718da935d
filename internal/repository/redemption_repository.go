package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/okanerk/restaurant-loyalty/internal/model"
)

// RedemptionRepo provides data access to the redemptions table, which
// holds one row per settled redemption carrying the code the customer
// presents at pickup.  Rows are written in the same transaction as the
// ledger entry and balance deduction.
type RedemptionRepo struct {
    db *sql.DB
}

// NewRedemptionRepo returns a new RedemptionRepo bound to the given database.
func NewRedemptionRepo(db *sql.DB) *RedemptionRepo { return &RedemptionRepo{db: db} }

// CreateTx inserts a redemption row within the provided transaction and
// populates the generated ID.  The code must already be generated and is
// unique per restaurant (enforced by a DB unique index on
// (restaurant_id, code)).
func (r *RedemptionRepo) CreateTx(ctx context.Context, tx *sql.Tx, red *model.Redemption) error {
    const q = `INSERT INTO redemptions
        (restaurant_id, customer_id, reward_id, transaction_id, code)
        VALUES (?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        red.RestaurantID, red.CustomerID, red.RewardID, red.TransactionID, red.Code)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    red.ID = uint64(id)
    return nil
}

// GetByCode fetches a redemption by its code within a restaurant.
// Returns ErrRedemptionNotFound when no row matches.
func (r *RedemptionRepo) GetByCode(ctx context.Context, restaurantID uint64, code string) (*model.Redemption, error) {
    const q = `SELECT id, restaurant_id, customer_id, reward_id, transaction_id, code, confirmed_at, created_at
        FROM redemptions WHERE restaurant_id = ? AND code = ?`
    var red model.Redemption
    var confirmed sql.NullTime
    err := r.db.QueryRowContext(ctx, q, restaurantID, code).Scan(
        &red.ID, &red.RestaurantID, &red.CustomerID, &red.RewardID,
        &red.TransactionID, &red.Code, &confirmed, &red.CreatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrRedemptionNotFound
    }
    if err != nil {
        return nil, err
    }
    if confirmed.Valid {
        t := confirmed.Time
        red.ConfirmedAt = &t
    }
    return &red, nil
}

// Confirm stamps confirmed_at on an unconfirmed redemption.  Confirming
// twice is not an error for staff workflow purposes, but only the first
// call writes the timestamp; the affected-row count distinguishes the two
// so the handler can report already-confirmed codes.
func (r *RedemptionRepo) Confirm(ctx context.Context, restaurantID uint64, code string, at time.Time) (bool, error) {
    const q = `UPDATE redemptions SET confirmed_at = ?
        WHERE restaurant_id = ? AND code = ? AND confirmed_at IS NULL`
    res, err := r.db.ExecContext(ctx, q, at.UTC(), restaurantID, code)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}
