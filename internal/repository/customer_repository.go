package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/okanerk/restaurant-loyalty/internal/model"
)

// CustomerRepo provides data access to the customers table.  The point
// totals and tier columns on a customer row are a denormalized cache of
// the transactions ledger; they are only ever mutated inside the same
// transaction that appends the corresponding ledger entry, so the cache
// cannot drift from the ledger.
type CustomerRepo struct {
    db *sql.DB
}

// NewCustomerRepo returns a new CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// DB exposes the underlying handle so services can open transactions that
// span customers, transactions and redemptions.
func (r *CustomerRepo) DB() *sql.DB { return r.db }

const customerColumns = `id, restaurant_id, name, email, phone, total_points, lifetime_points,
    current_tier, tier_progress, visit_count, total_spent_cents, created_at, updated_at`

// scanCustomer reads one customer row from any row scanner.
func scanCustomer(row interface{ Scan(...interface{}) error }) (*model.Customer, error) {
    var c model.Customer
    var phone sql.NullString
    err := row.Scan(
        &c.ID, &c.RestaurantID, &c.Name, &c.Email, &phone,
        &c.TotalPoints, &c.LifetimePoints, &c.CurrentTier, &c.TierProgress,
        &c.VisitCount, &c.TotalSpentCents, &c.CreatedAt, &c.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    if phone.Valid {
        p := phone.String
        c.Phone = &p
    }
    return &c, nil
}

// CreateTx inserts a new customer within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided model.  Enrollment appends the signup-bonus ledger entry in
// the same transaction, which is why creation is transactional.
func (r *CustomerRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.Customer) error {
    const q = `INSERT INTO customers
        (restaurant_id, name, email, phone, total_points, lifetime_points, current_tier, tier_progress)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    c.Email = strings.ToLower(strings.TrimSpace(c.Email))
    res, err := tx.ExecContext(ctx, q,
        c.RestaurantID, c.Name, c.Email, c.Phone,
        c.TotalPoints, c.LifetimePoints, c.CurrentTier, c.TierProgress,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    // Query back the row to populate timestamps and defaults.
    const sel = `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
    full, err := scanCustomer(tx.QueryRowContext(ctx, sel, c.ID))
    if err != nil {
        return err
    }
    *c = *full
    return nil
}

// GetByID fetches a customer scoped to a restaurant.  It returns
// ErrCustomerNotFound when no row matches.
func (r *CustomerRepo) GetByID(ctx context.Context, restaurantID, customerID uint64) (*model.Customer, error) {
    const q = `SELECT ` + customerColumns + ` FROM customers WHERE id = ? AND restaurant_id = ?`
    c, err := scanCustomer(r.db.QueryRowContext(ctx, q, customerID, restaurantID))
    if err == sql.ErrNoRows {
        return nil, ErrCustomerNotFound
    }
    return c, err
}

// GetByEmail fetches a customer by normalized email within a restaurant.
// It returns ErrCustomerNotFound when no row matches.
func (r *CustomerRepo) GetByEmail(ctx context.Context, restaurantID uint64, email string) (*model.Customer, error) {
    email = strings.ToLower(strings.TrimSpace(email))
    const q = `SELECT ` + customerColumns + ` FROM customers WHERE restaurant_id = ? AND email = ? LIMIT 1`
    c, err := scanCustomer(r.db.QueryRowContext(ctx, q, restaurantID, email))
    if err == sql.ErrNoRows {
        return nil, ErrCustomerNotFound
    }
    return c, err
}

// ListByRestaurant returns all customers of a restaurant ordered by
// enrollment time descending (newest first).
func (r *CustomerRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Customer, error) {
    const q = `SELECT ` + customerColumns + ` FROM customers
        WHERE restaurant_id = ? ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, restaurantID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Customer, 0)
    for rows.Next() {
        c, err := scanCustomer(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// GetForUpdateTx loads a customer row with a row lock (SELECT ... FOR
// UPDATE) inside the provided transaction.  The redemption engine uses
// this to serialize concurrent redemptions per customer: the balance
// check and the deduction run against a locked row, so two racing
// redemptions cannot both pass the check on a stale balance.  Returns
// ErrCustomerNotFound when no row matches.
func (r *CustomerRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, restaurantID, customerID uint64) (*model.Customer, error) {
    const q = `SELECT ` + customerColumns + ` FROM customers
        WHERE id = ? AND restaurant_id = ? FOR UPDATE`
    c, err := scanCustomer(tx.QueryRowContext(ctx, q, customerID, restaurantID))
    if err == sql.ErrNoRows {
        return nil, ErrCustomerNotFound
    }
    return c, err
}

// ApplyAccrualTx updates the denormalized aggregates after an accrual
// ledger entry: the spendable balance and lifetime total grow by points,
// the tier cache is replaced by the freshly classified values, and visit
// bookkeeping is bumped when the accrual came from a purchase.
func (r *CustomerRepo) ApplyAccrualTx(ctx context.Context, tx *sql.Tx, customerID uint64, points int64, tier string, progress uint8, visit bool, amountCents uint64) error {
    const q = `UPDATE customers SET
        total_points = total_points + ?,
        lifetime_points = lifetime_points + ?,
        current_tier = ?,
        tier_progress = ?,
        visit_count = visit_count + ?,
        total_spent_cents = total_spent_cents + ?
        WHERE id = ?`
    visitInc := 0
    if visit {
        visitInc = 1
    }
    res, err := tx.ExecContext(ctx, q, points, points, tier, progress, visitInc, amountCents, customerID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrCustomerNotFound
    }
    return nil
}

// DeductPointsTx decrements the spendable balance by points, guarded so
// the balance can never go negative: the UPDATE only matches when
// total_points still covers the deduction.  Zero rows affected after the
// caller already validated the balance means a concurrent redemption
// settled between check and deduction, reported as ErrConcurrencyConflict.
// Lifetime points, tier and progress are deliberately untouched.
func (r *CustomerRepo) DeductPointsTx(ctx context.Context, tx *sql.Tx, customerID uint64, points int64) error {
    const q = `UPDATE customers SET total_points = total_points - ?
        WHERE id = ? AND total_points >= ?`
    res, err := tx.ExecContext(ctx, q, points, customerID, points)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConcurrencyConflict
    }
    return nil
}
