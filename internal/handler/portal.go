package handler

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/okanerk/restaurant-loyalty/internal/config"
    "github.com/okanerk/restaurant-loyalty/internal/loyalty"
    "github.com/okanerk/restaurant-loyalty/internal/model"
    "github.com/okanerk/restaurant-loyalty/internal/repository"
    "github.com/okanerk/restaurant-loyalty/internal/service"
)

// PortalHandler serves the customer-facing endpoints.  The portal is
// deliberately unauthenticated: the customer's device remembers its own
// customer ID, which identifies but does not authorize.  Anything
// sensitive (confirming pickups, granting points) lives behind staff
// auth instead, and the portal routes sit behind the rate limiter.
type PortalHandler struct {
    Customers *repository.CustomerRepo
    Rewards   *repository.RewardRepo
    Ledger    *repository.LedgerRepo
    Accrual   *service.AccrualService
    Engine    *service.RedemptionEngine
    Sessions  *loyalty.SessionStore
    Program   config.ProgramConfig
}

func NewPortalHandler(
    customers *repository.CustomerRepo,
    rewards *repository.RewardRepo,
    ledger *repository.LedgerRepo,
    accrual *service.AccrualService,
    engine *service.RedemptionEngine,
    sessions *loyalty.SessionStore,
    program config.ProgramConfig,
) *PortalHandler {
    return &PortalHandler{
        Customers: customers,
        Rewards:   rewards,
        Ledger:    ledger,
        Accrual:   accrual,
        Engine:    engine,
        Sessions:  sessions,
        Program:   program,
    }
}

// ----- DTOs -----

type enrollReq struct {
    Name  string  `json:"name"`
    Email string  `json:"email"`
    Phone *string `json:"phone"`
}

type redeemReq struct {
    RewardID uint64 `json:"reward_id"`
}

type customerView struct {
    ID             uint64  `json:"id"`
    RestaurantID   uint64  `json:"restaurant_id"`
    Name           string  `json:"name"`
    Email          string  `json:"email"`
    Phone          *string `json:"phone,omitempty"`
    TotalPoints    int64   `json:"total_points"`
    LifetimePoints int64   `json:"lifetime_points"`
    CurrentTier    string  `json:"current_tier"`
    TierProgress   uint8   `json:"tier_progress"`
    VisitCount     uint32  `json:"visit_count"`
    MemberSince    string  `json:"member_since"`
}

type transactionView struct {
    ID          uint64  `json:"id"`
    Type        string  `json:"type"`
    Points      int64   `json:"points"`
    RewardID    *uint64 `json:"reward_id,omitempty"`
    Description string  `json:"description"`
    CreatedAt   string  `json:"created_at"`
}

type rewardView struct {
    ID             uint64 `json:"id"`
    Name           string `json:"name"`
    Description    string `json:"description"`
    PointsRequired int64  `json:"points_required"`
    Category       string `json:"category"`
    MinTier        string `json:"min_tier"`
    Affordable     bool   `json:"affordable"`
}

func toCustomerView(c *model.Customer) customerView {
    return customerView{
        ID:             c.ID,
        RestaurantID:   c.RestaurantID,
        Name:           c.Name,
        Email:          c.Email,
        Phone:          c.Phone,
        TotalPoints:    c.TotalPoints,
        LifetimePoints: c.LifetimePoints,
        CurrentTier:    c.CurrentTier,
        TierProgress:   c.TierProgress,
        VisitCount:     c.VisitCount,
        MemberSince:    c.CreatedAt.UTC().Format(time.RFC3339),
    }
}

// ----- helpers -----

// pathID parses a numeric path parameter, returning 0 when it is absent
// or malformed.  Callers treat 0 as invalid since IDs start at 1.
func pathID(c echo.Context, name string) uint64 {
    v, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil {
        return 0
    }
    return v
}

// writeDomainError maps the repository/loyalty sentinel errors onto HTTP
// responses.  Concurrency conflicts are flagged retryable so clients know
// a later identical request may succeed.
func writeDomainError(c echo.Context, err error) error {
    var he *echo.HTTPError
    if errors.As(err, &he) {
        return c.JSON(he.Code, echo.Map{"error": fmt.Sprint(he.Message)})
    }
    switch {
    case errors.Is(err, repository.ErrCustomerNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
    case errors.Is(err, repository.ErrRewardNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reward not found"})
    case errors.Is(err, repository.ErrRedemptionNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "redemption not found"})
    case errors.Is(err, repository.ErrIneligibleTier):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "tier too low for this reward"})
    case errors.Is(err, repository.ErrInsufficientPoints):
        return c.JSON(http.StatusConflict, echo.Map{"error": "insufficient points"})
    case errors.Is(err, repository.ErrConcurrencyConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "balance changed, please retry", "retryable": true})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrEmailExists):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already enrolled"})
    case errors.Is(err, loyalty.ErrInvalidEntry):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ledger entry"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// ----- handlers -----

// Enroll creates a loyalty member for a restaurant and applies the signup
// bonus.  POST /v1/restaurants/:id/customers
func (h *PortalHandler) Enroll(c echo.Context) error {
    restaurantID := pathID(c, "id")
    if restaurantID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid restaurant id"})
    }
    var req enrollReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Name == "" || req.Email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    cust, err := h.Accrual.Enroll(ctx, restaurantID, req.Name, req.Email, req.Phone)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusCreated, toCustomerView(cust))
}

// Lookup resolves a customer by email within a restaurant so a device
// can re-associate after losing its stored ID.
// GET /v1/restaurants/:id/customers/lookup?email=
func (h *PortalHandler) Lookup(c echo.Context) error {
    restaurantID := pathID(c, "id")
    email := strings.ToLower(strings.TrimSpace(c.QueryParam("email")))
    if restaurantID == 0 || email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant id and email required"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    cust, err := h.Customers.GetByEmail(ctx, restaurantID, email)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, toCustomerView(cust))
}

// GetCustomer returns the membership card view: balances, tier and
// progress toward the next tier.  GET /v1/restaurants/:id/customers/:cid
func (h *PortalHandler) GetCustomer(c echo.Context) error {
    restaurantID, customerID := pathID(c, "id"), pathID(c, "cid")
    if restaurantID == 0 || customerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    cust, err := h.Customers.GetByID(ctx, restaurantID, customerID)
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, toCustomerView(cust))
}

// Transactions returns the customer's point history, newest first.
// GET /v1/restaurants/:id/customers/:cid/transactions
func (h *PortalHandler) Transactions(c echo.Context) error {
    restaurantID, customerID := pathID(c, "id"), pathID(c, "cid")
    if restaurantID == 0 || customerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    // Ensure the customer belongs to this restaurant before exposing rows.
    if _, err := h.Customers.GetByID(ctx, restaurantID, customerID); err != nil {
        return writeDomainError(c, err)
    }
    entries, err := h.Ledger.ListByCustomer(ctx, customerID)
    if err != nil {
        return writeDomainError(c, err)
    }
    out := make([]transactionView, 0, len(entries))
    for _, t := range entries {
        out = append(out, transactionView{
            ID:          t.ID,
            Type:        t.Type,
            Points:      t.Points,
            RewardID:    t.RewardID,
            Description: t.Description,
            CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"transactions": out})
}

// AvailableRewards lists the active rewards the customer's tier can
// redeem, with an affordability hint against the current balance.
// GET /v1/restaurants/:id/customers/:cid/rewards
func (h *PortalHandler) AvailableRewards(c echo.Context) error {
    restaurantID, customerID := pathID(c, "id"), pathID(c, "cid")
    if restaurantID == 0 || customerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    cust, err := h.Customers.GetByID(ctx, restaurantID, customerID)
    if err != nil {
        return writeDomainError(c, err)
    }
    rewards, err := h.Rewards.ListActive(ctx, restaurantID)
    if err != nil {
        return writeDomainError(c, err)
    }
    out := make([]rewardView, 0, len(rewards))
    for _, rw := range rewards {
        ok, err := loyalty.MeetsTier(cust.CurrentTier, rw.MinTier)
        if err != nil || !ok {
            continue
        }
        out = append(out, rewardView{
            ID:             rw.ID,
            Name:           rw.Name,
            Description:    rw.Description,
            PointsRequired: rw.PointsRequired,
            Category:       rw.Category,
            MinTier:        rw.MinTier,
            Affordable:     cust.TotalPoints >= rw.PointsRequired,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"rewards": out})
}

// Redeem runs the full redemption flow for one reward selection: the
// session advances confirm -> processing, the engine settles atomically,
// and on success the session lands in issued carrying the code the
// customer shows staff.  On engine failure the session falls back to
// confirm and the error is surfaced with its mapped status.
// POST /v1/restaurants/:id/customers/:cid/redemptions
func (h *PortalHandler) Redeem(c echo.Context) error {
    restaurantID, customerID := pathID(c, "id"), pathID(c, "cid")
    if restaurantID == 0 || customerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req redeemReq
    if err := c.Bind(&req); err != nil || req.RewardID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reward_id required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    sess := loyalty.NewSession(customerID, req.RewardID)
    if err := sess.Begin(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    receipt, err := h.Engine.Redeem(ctx, restaurantID, customerID, req.RewardID)
    if err != nil {
        _ = sess.Fail(err)
        return writeDomainError(c, err)
    }
    _ = sess.Issue(receipt.Code)
    h.Sessions.Put(sess)

    return c.JSON(http.StatusCreated, echo.Map{
        "state":   sess.State,
        "receipt": receipt,
    })
}
