// Package queue defines message payloads exchanged over the message broker.
package queue

// RedemptionConfirmedEvent is published when staff confirm a redemption
// code at pickup.  It contains enough information for downstream consumers
// to log, notify, or trigger analytics without querying the primary
// database.
type RedemptionConfirmedEvent struct {
    RedemptionID   uint64 `json:"redemption_id"`
    RestaurantID   uint64 `json:"restaurant_id"`
    CustomerID     uint64 `json:"customer_id"`
    CustomerName   string `json:"customer_name"`
    RewardID       uint64 `json:"reward_id"`
    RewardName     string `json:"reward_name"`
    PointsSpent    int64  `json:"points_spent"`
    Code           string `json:"code"`
    ConfirmedAt    string `json:"confirmed_at"`
}
