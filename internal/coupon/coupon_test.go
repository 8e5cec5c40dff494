package coupon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func activeCoupon() Coupon {
	return Coupon{
		Code:         "SPRING5",
		DiscountType: Percent,
		Value:        5,
		MinCartValue: 50,
		MaxUses:      100,
		CurrentUses:  0,
		ValidFrom:    time.Now().Add(-time.Hour),
		IsActive:     true,
	}
}

func TestCanApply(t *testing.T) {
	now := time.Now()

	c := activeCoupon()
	assert.True(t, c.CanApply(100, now))

	inactive := activeCoupon()
	inactive.IsActive = false
	assert.False(t, inactive.CanApply(100, now))

	exhausted := activeCoupon()
	exhausted.CurrentUses = exhausted.MaxUses
	assert.False(t, exhausted.CanApply(100, now))

	belowMin := activeCoupon()
	assert.False(t, belowMin.CanApply(49.99, now))

	notYetValid := activeCoupon()
	notYetValid.ValidFrom = now.Add(time.Hour)
	assert.False(t, notYetValid.CanApply(100, now))

	expired := activeCoupon()
	until := now.Add(-time.Minute)
	expired.ValidUntil = &until
	assert.False(t, expired.CanApply(100, now))

	unlimited := activeCoupon()
	unlimited.ValidUntil = nil
	assert.True(t, unlimited.CanApply(100, now.Add(24*365*time.Hour)))
}

func TestDiscountPercent(t *testing.T) {
	c := Coupon{DiscountType: Percent, Value: 5}
	assert.InDelta(t, 5.0, c.Discount(100), 1e-9)
	assert.InDelta(t, 0.0, c.Discount(0), 1e-9)

	// Even a misconfigured >100% coupon cannot discount past the subtotal.
	c.Value = 150
	assert.InDelta(t, 100.0, c.Discount(100), 1e-9)
}

func TestDiscountFixed(t *testing.T) {
	c := Coupon{DiscountType: Fixed, Value: 20}
	assert.InDelta(t, 20.0, c.Discount(100), 1e-9)

	// A flat discount larger than the cart clamps to the subtotal.
	assert.InDelta(t, 15.0, c.Discount(15), 1e-9)
	assert.InDelta(t, 0.0, c.Discount(0), 1e-9)
}

func TestDiscountNegativeValueClampsToZero(t *testing.T) {
	c := Coupon{DiscountType: Fixed, Value: -10}
	assert.Zero(t, c.Discount(100))
}
