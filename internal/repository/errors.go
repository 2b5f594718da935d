// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrInsufficientPoints indicates that a redemption would
// overdraw the customer's balance, while ErrConcurrencyConflict
// signals that a concurrent redemption won the atomic race and the
// caller may safely retry once.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrCustomerNotFound is returned when no customer exists for the
// given restaurant and id/email. Handlers translate this into 404.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrRewardNotFound is returned when a reward does not exist, belongs
// to a different restaurant, or is no longer active. Handlers
// translate this into 404.
var ErrRewardNotFound = errors.New("reward not found")

// ErrIneligibleTier is returned when the customer's current tier
// ordinal is below the reward's minimum tier. Handlers translate
// this into 403.
var ErrIneligibleTier = errors.New("tier too low for reward")

// ErrInsufficientPoints is returned when the customer's spendable
// balance cannot cover the reward's point cost. Handlers translate
// this into 409.
var ErrInsufficientPoints = errors.New("insufficient points")

// ErrConcurrencyConflict is returned when the balance check passed
// but the guarded deduction matched no row, meaning a concurrent
// redemption settled first. The operation left no partial state and
// is safe to retry once.
var ErrConcurrencyConflict = errors.New("concurrent redemption conflict")

// ErrRedemptionNotFound is returned when no redemption row matches
// the presented code for the staff member's restaurant.
var ErrRedemptionNotFound = errors.New("redemption not found")
