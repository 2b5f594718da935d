package router

import (
    "github.com/labstack/echo/v4"

    "github.com/okanerk/restaurant-loyalty/internal/handler"
    "github.com/okanerk/restaurant-loyalty/internal/middleware"
)

// RegisterStaff registers the authenticated staff endpoints: reward
// catalog management, member views, visit and bonus recording, and
// redemption code confirmation.  All routes require a STAFF or ADMIN
// token; per-restaurant scoping happens inside the handlers against the
// token's restaurant claim.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("STAFF", "ADMIN"))

    // Reward catalog.
    g.POST("/restaurants/:id/rewards", s.CreateReward)
    g.GET("/restaurants/:id/rewards", s.ListRewards)
    g.PATCH("/restaurants/:id/rewards/:rid/active", s.SetRewardActive)

    // Members and accruals.
    g.GET("/restaurants/:id/customers", s.ListCustomers)
    g.POST("/restaurants/:id/customers/:cid/visits", s.RecordVisit)
    g.POST("/restaurants/:id/customers/:cid/bonus", s.GrantBonus)

    // Pickup confirmation by presented code.
    g.POST("/redemptions/:code/confirm", s.ConfirmRedemption)
}
