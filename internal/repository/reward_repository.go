package repository

import (
    "context"
    "database/sql"

    "github.com/okanerk/restaurant-loyalty/internal/model"
)

// RewardRepo provides data access to the rewards table.  Rewards are
// immutable once published except for the is_active flag, so the only
// mutation offered is SetActive.
type RewardRepo struct {
    db *sql.DB
}

// NewRewardRepo returns a new RewardRepo bound to the given database.
func NewRewardRepo(db *sql.DB) *RewardRepo { return &RewardRepo{db: db} }

const rewardColumns = `id, restaurant_id, name, description, points_required, category, min_tier, is_active, created_at`

func scanReward(row interface{ Scan(...interface{}) error }) (*model.Reward, error) {
    var rw model.Reward
    err := row.Scan(
        &rw.ID, &rw.RestaurantID, &rw.Name, &rw.Description,
        &rw.PointsRequired, &rw.Category, &rw.MinTier, &rw.IsActive, &rw.CreatedAt,
    )
    if err != nil {
        return nil, err
    }
    return &rw, nil
}

// Create inserts a new reward and populates its generated ID.
func (r *RewardRepo) Create(ctx context.Context, rw *model.Reward) error {
    const q = `INSERT INTO rewards
        (restaurant_id, name, description, points_required, category, min_tier, is_active)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        rw.RestaurantID, rw.Name, rw.Description, rw.PointsRequired, rw.Category, rw.MinTier, rw.IsActive)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rw.ID = uint64(id)
    return nil
}

// GetByID fetches a reward scoped to a restaurant regardless of its active
// flag.  Returns ErrRewardNotFound when no row matches.
func (r *RewardRepo) GetByID(ctx context.Context, restaurantID, rewardID uint64) (*model.Reward, error) {
    const q = `SELECT ` + rewardColumns + ` FROM rewards WHERE id = ? AND restaurant_id = ?`
    rw, err := scanReward(r.db.QueryRowContext(ctx, q, rewardID, restaurantID))
    if err == sql.ErrNoRows {
        return nil, ErrRewardNotFound
    }
    return rw, err
}

// GetActiveTx loads an active reward inside a transaction.  The
// redemption engine treats an inactive or missing reward identically:
// both are ErrRewardNotFound, checked before tier and balance.
func (r *RewardRepo) GetActiveTx(ctx context.Context, tx *sql.Tx, restaurantID, rewardID uint64) (*model.Reward, error) {
    const q = `SELECT ` + rewardColumns + ` FROM rewards
        WHERE id = ? AND restaurant_id = ? AND is_active = 1`
    rw, err := scanReward(tx.QueryRowContext(ctx, q, rewardID, restaurantID))
    if err == sql.ErrNoRows {
        return nil, ErrRewardNotFound
    }
    return rw, err
}

// ListByRestaurant returns every reward of a restaurant, active or not,
// for staff management views.  Ordering is newest first.
func (r *RewardRepo) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]model.Reward, error) {
    const q = `SELECT ` + rewardColumns + ` FROM rewards
        WHERE restaurant_id = ? ORDER BY created_at DESC`
    return r.list(ctx, q, restaurantID)
}

// ListActive returns the active rewards of a restaurant.  Callers filter
// by tier eligibility; ordering is unspecified by the contract, so the
// cheapest stable order (id) is used.
func (r *RewardRepo) ListActive(ctx context.Context, restaurantID uint64) ([]model.Reward, error) {
    const q = `SELECT ` + rewardColumns + ` FROM rewards
        WHERE restaurant_id = ? AND is_active = 1 ORDER BY id`
    return r.list(ctx, q, restaurantID)
}

func (r *RewardRepo) list(ctx context.Context, q string, args ...interface{}) ([]model.Reward, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reward, 0)
    for rows.Next() {
        rw, err := scanReward(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *rw)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// SetActive toggles availability.  Returns ErrRewardNotFound when the
// reward does not exist for the restaurant.
func (r *RewardRepo) SetActive(ctx context.Context, restaurantID, rewardID uint64, active bool) error {
    const q = `UPDATE rewards SET is_active = ? WHERE id = ? AND restaurant_id = ?`
    res, err := r.db.ExecContext(ctx, q, active, rewardID, restaurantID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrRewardNotFound
    }
    return nil
}
