package router

import (
    "github.com/labstack/echo/v4"

    "github.com/okanerk/restaurant-loyalty/internal/handler"
)

// RegisterPortal registers the customer-facing portal endpoints.  These
// routes carry no JWT: the device-stored customer ID identifies the
// member but is not a trust boundary, so nothing here mutates state on
// another customer's behalf and every route sits behind the rate
// limiter.  The reward and membership reads additionally go through the
// response cache; the redemption POST never does.
func RegisterPortal(e *echo.Echo, p *handler.PortalHandler, rateLimit, cache echo.MiddlewareFunc) {
    g := e.Group("/v1/restaurants/:id", rateLimit)

    // Enrollment and device re-association.
    g.POST("/customers", p.Enroll)
    g.GET("/customers/lookup", p.Lookup)

    // Membership card, history and the tier-filtered reward catalog.
    g.GET("/customers/:cid", p.GetCustomer, cache)
    g.GET("/customers/:cid/transactions", p.Transactions)
    g.GET("/customers/:cid/rewards", p.AvailableRewards, cache)

    // Redemption: validates, settles atomically and issues the code.
    g.POST("/customers/:cid/redemptions", p.Redeem)
}
