package handler

import (
    "context"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/okanerk/restaurant-loyalty/internal/config"
    "github.com/okanerk/restaurant-loyalty/internal/loyalty"
    "github.com/okanerk/restaurant-loyalty/internal/model"
    "github.com/okanerk/restaurant-loyalty/internal/queue"
    "github.com/okanerk/restaurant-loyalty/internal/repository"
    "github.com/okanerk/restaurant-loyalty/internal/service"
)

// StaffHandler serves the authenticated staff endpoints: reward catalog
// management, recording visits and bonuses, and confirming redemption
// codes at pickup.  Every route is scoped to the restaurant carried in
// the staff JWT; admins may operate across restaurants.
type StaffHandler struct {
    Customers   *repository.CustomerRepo
    Rewards     *repository.RewardRepo
    Redemptions *repository.RedemptionRepo
    Accrual     *service.AccrualService
    Sessions    *loyalty.SessionStore
    Program     config.ProgramConfig
}

func NewStaffHandler(
    customers *repository.CustomerRepo,
    rewards *repository.RewardRepo,
    redemptions *repository.RedemptionRepo,
    accrual *service.AccrualService,
    sessions *loyalty.SessionStore,
    program config.ProgramConfig,
) *StaffHandler {
    return &StaffHandler{
        Customers:   customers,
        Rewards:     rewards,
        Redemptions: redemptions,
        Accrual:     accrual,
        Sessions:    sessions,
        Program:     program,
    }
}

// ----- DTOs -----

type createRewardReq struct {
    Name           string `json:"name"`
    Description    string `json:"description"`
    PointsRequired int64  `json:"points_required"`
    Category       string `json:"category"`
    MinTier        string `json:"min_tier"`
    Active         *bool  `json:"is_active"`
}

type setActiveReq struct {
    Active bool `json:"active"`
}

type visitReq struct {
    AmountCents uint64 `json:"amount_cents"`
    Note        string `json:"note"`
}

type bonusReq struct {
    Type   string `json:"type"` // bonus | referral
    Points int64  `json:"points"`
    Note   string `json:"note"`
}

// ----- scope helpers -----

// claimRestaurantID returns the restaurant from the JWT.  Claims decode
// numbers as float64; a missing or non-numeric claim yields 0.
func claimRestaurantID(c echo.Context) uint64 {
    switch v := c.Get("restaurant_id").(type) {
    case float64:
        return uint64(v)
    case string:
        if n, err := strconv.ParseUint(v, 10, 64); err == nil {
            return n
        }
    }
    return 0
}

func isAdmin(c echo.Context) bool {
    role, _ := c.Get("role").(string)
    return role == "ADMIN"
}

// restaurantScope validates that the caller may act on the restaurant in
// the path.  Staff are bound to the restaurant in their token; admins
// pass for any restaurant.
func restaurantScope(c echo.Context) (uint64, error) {
    restaurantID := pathID(c, "id")
    if restaurantID == 0 {
        return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid restaurant id")
    }
    if isAdmin(c) {
        return restaurantID, nil
    }
    if claimRestaurantID(c) != restaurantID {
        return 0, repository.ErrForbidden
    }
    return restaurantID, nil
}

// ----- reward catalog -----

// CreateReward publishes a reward.  POST /v1/restaurants/:id/rewards
func (h *StaffHandler) CreateReward(c echo.Context) error {
    restaurantID, err := restaurantScope(c)
    if err != nil {
        return writeDomainError(c, err)
    }
    var req createRewardReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" || req.PointsRequired <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and positive points_required required"})
    }
    minTier := strings.ToLower(strings.TrimSpace(req.MinTier))
    if minTier == "" {
        minTier = loyalty.TierBronze
    }
    if _, ok := loyalty.TierOrdinal(minTier); !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown min_tier"})
    }
    active := true
    if req.Active != nil {
        active = *req.Active
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    rw := &model.Reward{
        RestaurantID:   restaurantID,
        Name:           req.Name,
        Description:    req.Description,
        PointsRequired: req.PointsRequired,
        Category:       req.Category,
        MinTier:        minTier,
        IsActive:       active,
    }
    if err := h.Rewards.Create(ctx, rw); err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"id": rw.ID})
}

// ListRewards returns the full catalog, active or not.
// GET /v1/restaurants/:id/rewards
func (h *StaffHandler) ListRewards(c echo.Context) error {
    restaurantID, err := restaurantScope(c)
    if err != nil {
        return writeDomainError(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    rewards, err := h.Rewards.ListByRestaurant(ctx, restaurantID)
    if err != nil {
        return writeDomainError(c, err)
    }
    type staffRewardView struct {
        rewardView
        IsActive  bool   `json:"is_active"`
        CreatedAt string `json:"created_at"`
    }
    out := make([]staffRewardView, 0, len(rewards))
    for _, rw := range rewards {
        out = append(out, staffRewardView{
            rewardView: rewardView{
                ID:             rw.ID,
                Name:           rw.Name,
                Description:    rw.Description,
                PointsRequired: rw.PointsRequired,
                Category:       rw.Category,
                MinTier:        rw.MinTier,
            },
            IsActive:  rw.IsActive,
            CreatedAt: rw.CreatedAt.UTC().Format(time.RFC3339),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"rewards": out})
}

// SetRewardActive toggles a reward's availability.
// PATCH /v1/restaurants/:id/rewards/:rid/active
func (h *StaffHandler) SetRewardActive(c echo.Context) error {
    restaurantID, err := restaurantScope(c)
    if err != nil {
        return writeDomainError(c, err)
    }
    rewardID := pathID(c, "rid")
    if rewardID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reward id"})
    }
    var req setActiveReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    if err := h.Rewards.SetActive(ctx, restaurantID, rewardID, req.Active); err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"id": rewardID, "is_active": req.Active})
}

// ----- members -----

// ListCustomers returns the restaurant's enrolled members, newest first.
// GET /v1/restaurants/:id/customers
func (h *StaffHandler) ListCustomers(c echo.Context) error {
    restaurantID, err := restaurantScope(c)
    if err != nil {
        return writeDomainError(c, err)
    }
    ctx, cancel := reqCtx(c)
    defer cancel()

    customers, err := h.Customers.ListByRestaurant(ctx, restaurantID)
    if err != nil {
        return writeDomainError(c, err)
    }
    out := make([]customerView, 0, len(customers))
    for i := range customers {
        out = append(out, toCustomerView(&customers[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"customers": out})
}

// RecordVisit records a purchase for a member, accruing points at the
// configured earn rate.  POST /v1/restaurants/:id/customers/:cid/visits
func (h *StaffHandler) RecordVisit(c echo.Context) error {
    restaurantID, err := restaurantScope(c)
    if err != nil {
        return writeDomainError(c, err)
    }
    customerID := pathID(c, "cid")
    if customerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
    }
    var req visitReq
    if err := c.Bind(&req); err != nil || req.AmountCents == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "positive amount_cents required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    entry, err := h.Accrual.RecordPurchase(ctx, restaurantID, customerID, req.AmountCents, strings.TrimSpace(req.Note))
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "transaction_id": entry.ID,
        "points_earned":  entry.Points,
    })
}

// GrantBonus appends a staff-granted bonus or referral accrual.
// POST /v1/restaurants/:id/customers/:cid/bonus
func (h *StaffHandler) GrantBonus(c echo.Context) error {
    restaurantID, err := restaurantScope(c)
    if err != nil {
        return writeDomainError(c, err)
    }
    customerID := pathID(c, "cid")
    if customerID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
    }
    var req bonusReq
    if err := c.Bind(&req); err != nil || req.Points <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "positive points required"})
    }
    entryType := strings.ToLower(strings.TrimSpace(req.Type))
    if entryType == "" {
        entryType = model.TxBonus
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    entry, err := h.Accrual.GrantPoints(ctx, restaurantID, customerID, entryType, req.Points, strings.TrimSpace(req.Note))
    if err != nil {
        return writeDomainError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "transaction_id": entry.ID,
        "points_granted": entry.Points,
    })
}

// ----- pickup confirmation -----

// ConfirmRedemption marks a presented redemption code as picked up.  The
// restaurant comes from the staff token (admins pass ?restaurant_id=).
// Only the first confirmation stamps the timestamp and emits the broker
// event; repeats report already_confirmed instead of failing, so a staff
// double-tap stays harmless.  POST /v1/redemptions/:code/confirm
func (h *StaffHandler) ConfirmRedemption(c echo.Context) error {
    code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
    if code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
    }
    restaurantID := claimRestaurantID(c)
    if restaurantID == 0 && isAdmin(c) {
        restaurantID, _ = strconv.ParseUint(c.QueryParam("restaurant_id"), 10, 64)
    }
    if restaurantID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "restaurant_id required"})
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    red, err := h.Redemptions.GetByCode(ctx, restaurantID, code)
    if err != nil {
        return writeDomainError(c, err)
    }
    now := time.Now().UTC()
    first, err := h.Redemptions.Confirm(ctx, restaurantID, code, now)
    if err != nil {
        return writeDomainError(c, err)
    }
    if !first {
        return c.JSON(http.StatusOK, echo.Map{
            "code":              code,
            "confirmed":         true,
            "already_confirmed": true,
        })
    }

    // Advance the customer's live session view, then tear it down once
    // the confirmed state has been displayed.
    if sess := h.Sessions.Get(code); sess != nil {
        if err := sess.StaffConfirm(); err == nil {
            h.Sessions.RemoveAfter(code, h.Program.DisplayInterval)
        }
    }

    // Enrich the broker event with names; lookups failing must not block
    // the confirmation that already committed.
    ev := queue.RedemptionConfirmedEvent{
        RedemptionID: red.ID,
        RestaurantID: red.RestaurantID,
        CustomerID:   red.CustomerID,
        RewardID:     red.RewardID,
        Code:         code,
        ConfirmedAt:  now.Format(time.RFC3339),
    }
    if cust, err := h.Customers.GetByID(ctx, restaurantID, red.CustomerID); err == nil {
        ev.CustomerName = cust.Name
    }
    if rw, err := h.Rewards.GetByID(ctx, restaurantID, red.RewardID); err == nil {
        ev.RewardName = rw.Name
        ev.PointsSpent = rw.PointsRequired
    }
    go func() {
        pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
        defer pubCancel()
        _ = service.PublishRedemptionConfirmed(pubCtx, ev)
    }()

    return c.JSON(http.StatusOK, echo.Map{
        "code":         code,
        "confirmed":    true,
        "confirmed_at": now.Format(time.RFC3339),
    })
}
