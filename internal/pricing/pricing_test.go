package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suhanarda/greengrocer/internal/coupon"
)

func TestCalculateNoDiscounts(t *testing.T) {
	q := Calculate([]Line{
		{UnitPrice: 10, Amount: 2},
		{UnitPrice: 3.5, Amount: 4},
	}, 0, nil)

	assert.InDelta(t, 34.0, q.Subtotal, 1e-9)
	assert.Zero(t, q.Discount)
	assert.InDelta(t, 34.0*VATRate, q.VAT, 1e-9)
	assert.InDelta(t, 34.0*1.18, q.Total, 1e-9)
}

// Subtotal 100, loyalty 10%, PERCENT 5% coupon: discount 15,
// VAT (100-15)*0.18 = 15.3, total 100.3.
func TestCalculateLoyaltyPlusCoupon(t *testing.T) {
	c := &coupon.Coupon{DiscountType: coupon.Percent, Value: 5}

	q := Calculate([]Line{{UnitPrice: 100, Amount: 1}}, 10, c)

	assert.InDelta(t, 100.0, q.Subtotal, 1e-9)
	assert.InDelta(t, 10.0, q.LoyaltyDiscount, 1e-9)
	assert.InDelta(t, 5.0, q.CouponDiscount, 1e-9)
	assert.InDelta(t, 15.0, q.Discount, 1e-9)
	assert.InDelta(t, 15.3, q.VAT, 1e-9)
	assert.InDelta(t, 100.3, q.Total, 1e-9)
}

// Discounts are additive against the raw subtotal, not compounded.
func TestCalculateDiscountsNotCompounded(t *testing.T) {
	c := &coupon.Coupon{DiscountType: coupon.Percent, Value: 50}

	q := Calculate([]Line{{UnitPrice: 200, Amount: 1}}, 50, c)

	// 50% + 50% of 200 = 200, not 200*0.5*0.5.
	assert.InDelta(t, 200.0, q.Discount, 1e-9)
	assert.Zero(t, q.VAT)
	assert.Zero(t, q.Total)
}

func TestCalculateDiscountClampedToSubtotal(t *testing.T) {
	c := &coupon.Coupon{DiscountType: coupon.Fixed, Value: 500}

	q := Calculate([]Line{{UnitPrice: 30, Amount: 1}}, 90, c)

	assert.InDelta(t, 30.0, q.Discount, 1e-9)
	assert.GreaterOrEqual(t, q.VAT, 0.0)
	assert.GreaterOrEqual(t, q.Total, 0.0)
}

func TestCalculateFractionalAmounts(t *testing.T) {
	// 0.5 kg at 8.40/kg plus 1.25 kg at 2.00/kg.
	q := Calculate([]Line{
		{UnitPrice: 8.40, Amount: 0.5},
		{UnitPrice: 2.00, Amount: 1.25},
	}, 0, nil)

	assert.InDelta(t, 6.7, q.Subtotal, 1e-9)
	assert.InDelta(t, 6.7-q.Discount+q.VAT, q.Total, 1e-9)
}

func TestCalculateEmptyLines(t *testing.T) {
	q := Calculate(nil, 10, nil)
	assert.Zero(t, q.Subtotal)
	assert.Zero(t, q.Total)
}

// The order invariant total = subtotal - discount + vat holds for a sweep of
// loyalty and coupon percentages.
func TestCalculateInvariantSweep(t *testing.T) {
	for loyalty := 0.0; loyalty <= 100; loyalty += 12.5 {
		for pct := 0.0; pct <= 100; pct += 12.5 {
			c := &coupon.Coupon{DiscountType: coupon.Percent, Value: pct}
			q := Calculate([]Line{{UnitPrice: 7.3, Amount: 9}}, loyalty, c)

			assert.InDelta(t, q.Subtotal-q.Discount+q.VAT, q.Total, 1e-9)
			assert.GreaterOrEqual(t, q.Discount, 0.0)
			assert.GreaterOrEqual(t, q.VAT, -1e-9)
			assert.LessOrEqual(t, q.Discount, q.Subtotal+1e-9)
		}
	}
}
