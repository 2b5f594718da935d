package repository

import (
    "context"
    "database/sql"

    "github.com/okanerk/restaurant-loyalty/internal/loyalty"
    "github.com/okanerk/restaurant-loyalty/internal/model"
)

// LedgerRepo provides append and read access to the transactions table,
// the append-only ledger of point-affecting events.  Rows are immutable:
// there is no update or delete.  The ledger is the source of truth for a
// customer's balances; the aggregate columns on the customer row are a
// cache maintained in the same transaction as each append.
type LedgerRepo struct {
    db *sql.DB
}

// NewLedgerRepo returns a new LedgerRepo bound to the given database.
func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// AppendTx validates and inserts one ledger entry within the provided
// transaction, populating the generated ID and creation time on the
// model.  Malformed entries (zero/negative accruals, non-negative or
// reward-less redemptions) are rejected with loyalty.ErrInvalidEntry
// before touching the database.
func (r *LedgerRepo) AppendTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
    if err := loyalty.ValidateEntry(t); err != nil {
        return err
    }
    const q = `INSERT INTO transactions
        (customer_id, type, points, amount_spent_cents, reward_id, description)
        VALUES (?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q,
        t.CustomerID, t.Type, t.Points, t.AmountSpentCents, t.RewardID, t.Description)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    // Read back created_at so callers can return the full entry.
    return tx.QueryRowContext(ctx,
        `SELECT created_at FROM transactions WHERE id = ?`, t.ID).Scan(&t.CreatedAt)
}

// ListByCustomer returns the customer's ledger entries newest first.
func (r *LedgerRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Transaction, error) {
    const q = `SELECT id, customer_id, type, points, amount_spent_cents, reward_id, description, created_at
        FROM transactions WHERE customer_id = ? ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, customerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Transaction, 0)
    for rows.Next() {
        var t model.Transaction
        var amount sql.NullInt64
        var rewardID sql.NullInt64
        if err := rows.Scan(&t.ID, &t.CustomerID, &t.Type, &t.Points, &amount, &rewardID, &t.Description, &t.CreatedAt); err != nil {
            return nil, err
        }
        if amount.Valid {
            a := uint64(amount.Int64)
            t.AmountSpentCents = &a
        }
        if rewardID.Valid {
            rid := uint64(rewardID.Int64)
            t.RewardID = &rid
        }
        out = append(out, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// SumBalances reconstructs the spendable and lifetime balances from the
// ledger: the spendable balance is the sum of all deltas, the lifetime
// total the sum of positive deltas only.  This is the canonical read;
// the cached columns on the customer row exist for cheap list views.
func (r *LedgerRepo) SumBalances(ctx context.Context, customerID uint64) (current, lifetime int64, err error) {
    const q = `SELECT
        COALESCE(SUM(points), 0),
        COALESCE(SUM(CASE WHEN points > 0 THEN points ELSE 0 END), 0)
        FROM transactions WHERE customer_id = ?`
    err = r.db.QueryRowContext(ctx, q, customerID).Scan(&current, &lifetime)
    return current, lifetime, err
}
