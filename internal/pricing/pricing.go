// Package pricing computes checkout totals. Everything here is a pure
// function of its inputs so the UI can quote a cart repeatedly before commit.
package pricing

import "github.com/suhanarda/greengrocer/internal/coupon"

// VATRate is the value-added tax applied to the discounted subtotal.
const VATRate = 0.18

// Line is one cart or order line: a unit price and a (possibly fractional)
// amount.
type Line struct {
	UnitPrice float64
	Amount    float64
}

// Quote is the price breakdown for a set of lines.
//
// Invariant: Total = Subtotal - Discount + VAT, with
// VAT = (Subtotal - Discount) * VATRate.
type Quote struct {
	Subtotal        float64
	LoyaltyDiscount float64
	CouponDiscount  float64
	Discount        float64
	VAT             float64
	Total           float64
}

// Calculate prices the given lines with a loyalty percentage (0-100) and an
// optional coupon. Loyalty and coupon discounts are additive: each is taken
// against the raw subtotal, never against a partially discounted running
// total. Callers guarantee non-negative inputs.
func Calculate(lines []Line, loyaltyPercent float64, c *coupon.Coupon) Quote {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.UnitPrice * l.Amount
	}

	loyalty := subtotal * (loyaltyPercent / 100)

	var couponDisc float64
	if c != nil {
		couponDisc = c.Discount(subtotal)
	}

	discount := loyalty + couponDisc
	if discount > subtotal {
		discount = subtotal
	}

	vat := (subtotal - discount) * VATRate

	return Quote{
		Subtotal:        subtotal,
		LoyaltyDiscount: loyalty,
		CouponDiscount:  couponDisc,
		Discount:        discount,
		VAT:             vat,
		Total:           subtotal - discount + vat,
	}
}
