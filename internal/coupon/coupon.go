// Package coupon implements discount coupons: validity checks, discount
// arithmetic and the persistence port for atomic redemption.
package coupon

import (
	"context"
	"time"
)

// DiscountType selects how Value is interpreted.
type DiscountType string

const (
	// Percent treats Value as percentage points off the subtotal.
	Percent DiscountType = "PERCENT"
	// Fixed treats Value as a flat currency amount.
	Fixed DiscountType = "FIXED"
)

// Coupon is a named discount instrument with usage caps and a validity window.
type Coupon struct {
	ID           int64        `db:"id"`
	Code         string       `db:"code"`
	DiscountType DiscountType `db:"discount_type"`
	Value        float64      `db:"value"`
	MinCartValue float64      `db:"min_cart_value"`
	MaxUses      int          `db:"max_uses"`
	CurrentUses  int          `db:"current_uses"`
	ValidFrom    time.Time    `db:"valid_from"`
	ValidUntil   *time.Time   `db:"valid_until"` // nil = no expiry
	IsActive     bool         `db:"is_active"`
}

// CanApply reports whether the coupon may be applied to a cart with the given
// subtotal at the given instant.
func (c Coupon) CanApply(subtotal float64, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.CurrentUses >= c.MaxUses {
		return false
	}
	if subtotal < c.MinCartValue {
		return false
	}
	if now.Before(c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	return true
}

// Discount returns the discount amount for the given subtotal. The result
// never exceeds the subtotal and never goes negative, for either type.
func (c Coupon) Discount(subtotal float64) float64 {
	var d float64
	switch c.DiscountType {
	case Percent:
		d = subtotal * (c.Value / 100)
	case Fixed:
		d = c.Value
	}
	if d > subtotal {
		d = subtotal
	}
	if d < 0 {
		d = 0
	}
	return d
}

// Repository is the coupon persistence port.
//
// Redeem must bump current_uses with the usage cap inside the statement's own
// guard so a near-exhausted coupon can never be driven past max_uses by
// concurrent checkouts.
type Repository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Create(ctx context.Context, c *Coupon) (int64, error)

	// Redeem atomically increments current_uses iff the coupon is active and
	// under its cap. Returns false when the cap was reached first.
	Redeem(ctx context.Context, code string) (bool, error)

	// Release undoes one redemption (compensation after a failed checkout).
	Release(ctx context.Context, code string) error
}
