package checkout

import "errors"

// Validation errors: detected before anything is persisted, safe to surface
// directly to the customer.
var (
	ErrEmptyCart           = errors.New("checkout: cart is empty")
	ErrBelowMinimum        = errors.New("checkout: cart is below the minimum order amount")
	ErrNoDeliverySlot      = errors.New("checkout: no delivery time slot selected")
	ErrDeliveryInPast      = errors.New("checkout: delivery slot is in the past")
	ErrDeliveryTooFar      = errors.New("checkout: delivery slot is too far in the future")
	ErrDeliveryTooSoon     = errors.New("checkout: same-day slot must start at least 30 minutes from now")
	ErrCouponNotApplicable = errors.New("checkout: coupon cannot be applied to this cart")
)

// Contention outcomes: another customer got there first. Expected results of
// concurrent shopping, not system failures.
var (
	// ErrInsufficientStock means stock ran out between cart validation and
	// commit.
	ErrInsufficientStock = errors.New("checkout: insufficient stock")

	// ErrCouponExhausted means the coupon's last use was redeemed by a
	// concurrent checkout.
	ErrCouponExhausted = errors.New("checkout: coupon has no uses left")
)
