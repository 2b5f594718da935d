package service

import (
    "context"
    "crypto/rand"
    "database/sql"
    "encoding/hex"
    "strings"

    "github.com/okanerk/restaurant-loyalty/internal/loyalty"
    "github.com/okanerk/restaurant-loyalty/internal/model"
    "github.com/okanerk/restaurant-loyalty/internal/repository"
)

// Receipt is returned by a successful redemption.  The code is the opaque
// token the customer presents to staff; Balance is the spendable balance
// after the deduction.
type Receipt struct {
    RedemptionID  uint64 `json:"redemption_id"`
    TransactionID uint64 `json:"transaction_id"`
    Code          string `json:"code"`
    PointsSpent   int64  `json:"points_spent"`
    Balance       int64  `json:"balance"`
}

// RedemptionEngine validates and settles reward redemptions.  The balance
// check and the deduction run inside one transaction against a row-locked
// customer, so concurrent redemptions for the same customer serialize and
// can never jointly overdraw the balance.
type RedemptionEngine struct {
    db          *sql.DB
    customers   *repository.CustomerRepo
    rewards     *repository.RewardRepo
    ledger      *repository.LedgerRepo
    redemptions *repository.RedemptionRepo
}

// NewRedemptionEngine constructs the engine.  All dependencies must be
// non-nil.
func NewRedemptionEngine(db *sql.DB, customers *repository.CustomerRepo, rewards *repository.RewardRepo, ledger *repository.LedgerRepo, redemptions *repository.RedemptionRepo) *RedemptionEngine {
    if db == nil || customers == nil || rewards == nil || ledger == nil || redemptions == nil {
        panic("nil dependency passed to NewRedemptionEngine")
    }
    return &RedemptionEngine{
        db:          db,
        customers:   customers,
        rewards:     rewards,
        ledger:      ledger,
        redemptions: redemptions,
    }
}

// checkEligibility applies the redemption preconditions in contract order
// against canonical state: tier gate first, then balance.  The reward
// existence/active check happens earlier at load time.  Pure so it can be
// tested without a database.
func checkEligibility(cust *model.Customer, reward *model.Reward) error {
    ok, err := loyalty.MeetsTier(cust.CurrentTier, reward.MinTier)
    if err != nil || !ok {
        return repository.ErrIneligibleTier
    }
    if cust.TotalPoints < reward.PointsRequired {
        return repository.ErrInsufficientPoints
    }
    return nil
}

// NewRedemptionCode returns an opaque, human-presentable redemption code:
// "RDM-" followed by ten uppercase hex characters from crypto/rand.
// Staff accept the code as pickup proof, so it is generated unguessably;
// uniqueness within a restaurant is ultimately enforced by the DB unique
// index, with an insert retry in Redeem covering the rare collision.
func NewRedemptionCode() (string, error) {
    b := make([]byte, 5)
    if _, err := rand.Read(b); err != nil {
        return "", err
    }
    return "RDM-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

// Redeem validates a redemption request and atomically settles it.
// Preconditions checked in order, each with a distinct failure: the reward
// exists and is active (ErrRewardNotFound), the customer's tier covers the
// reward's minimum (ErrIneligibleTier), and the spendable balance covers
// the cost (ErrInsufficientPoints).  On success one transaction appends
// the redemption ledger entry, decrements the cached balance and writes
// the redemptions row; lifetime points, tier and progress are untouched.
// Either everything commits or nothing persists.
func (e *RedemptionEngine) Redeem(ctx context.Context, restaurantID, customerID, rewardID uint64) (*Receipt, error) {
    tx, err := e.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Load the reward first: a missing or inactive reward fails before any
    // customer state is examined.
    reward, err := e.rewards.GetActiveTx(ctx, tx, restaurantID, rewardID)
    if err != nil {
        return nil, err
    }
    // Lock the customer row.  Every concurrent redemption for this
    // customer queues behind this lock, so the balance read below cannot
    // go stale before the deduction commits.
    cust, err := e.customers.GetForUpdateTx(ctx, tx, restaurantID, customerID)
    if err != nil {
        return nil, err
    }
    if err := checkEligibility(cust, reward); err != nil {
        return nil, err
    }

    entry := &model.Transaction{
        CustomerID:  customerID,
        Type:        model.TxRedemption,
        Points:      -reward.PointsRequired,
        RewardID:    &reward.ID,
        Description: "Redeemed " + reward.Name,
    }
    if err := e.ledger.AppendTx(ctx, tx, entry); err != nil {
        return nil, err
    }
    if err := e.customers.DeductPointsTx(ctx, tx, customerID, reward.PointsRequired); err != nil {
        return nil, err
    }

    red := &model.Redemption{
        RestaurantID:  restaurantID,
        CustomerID:    customerID,
        RewardID:      reward.ID,
        TransactionID: entry.ID,
    }
    // Codes are random; a unique-index collision within the restaurant is
    // possible but vanishingly rare, so retry a couple of times.
    for attempt := 0; ; attempt++ {
        red.Code, err = NewRedemptionCode()
        if err != nil {
            return nil, err
        }
        err = e.redemptions.CreateTx(ctx, tx, red)
        if err == nil {
            break
        }
        if attempt < 2 && strings.Contains(strings.ToLower(err.Error()), "1062") {
            continue
        }
        return nil, err
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return &Receipt{
        RedemptionID:  red.ID,
        TransactionID: entry.ID,
        Code:          red.Code,
        PointsSpent:   reward.PointsRequired,
        Balance:       cust.TotalPoints - reward.PointsRequired,
    }, nil
}
