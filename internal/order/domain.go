// Package order owns the order aggregate and its lifecycle: the status state
// machine, the carrier-assignment race, and cancellation rules.
package order

import (
	"time"
)

// Status is the order lifecycle state.
//
// PENDING -> SELECTED -> DELIVERED, with CANCELLED reachable from PENDING or
// SELECTED. DELIVERED and CANCELLED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSelected  Status = "SELECTED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// CancellationWindow is how long after placement a customer may cancel their
// own PENDING order. Carriers and the owner are not bound by it.
const CancellationWindow = 60 * time.Minute

// Order is a priced, stock-reserved purchase. Monetary fields satisfy
// TotalCost = Subtotal - DiscountAmount + VATAmount at all times.
type Order struct {
	ID                int64      `db:"id"`
	CustomerID        int64      `db:"customer_id"`
	CarrierID         *int64     `db:"carrier_id"` // nil until a carrier claims the order
	OrderTime         time.Time  `db:"order_time"`
	RequestedDelivery time.Time  `db:"requested_delivery"`
	ActualDelivery    *time.Time `db:"actual_delivery"`
	Status            Status     `db:"status"`
	Subtotal          float64    `db:"subtotal"`
	DiscountAmount    float64    `db:"discount_amount"`
	VATAmount         float64    `db:"vat_amount"`
	TotalCost         float64    `db:"total_cost"`
	CouponCode        *string    `db:"coupon_code"`
	InvoiceRef        string     `db:"invoice_ref"`
	Notes             string     `db:"notes"`
	Items             []Item     `db:"-"`
}

// Item is one line of an order. ProductName and UnitPrice are snapshots taken
// at order time and are never re-derived from the live catalog, so historical
// orders stay accurate when prices or names change later.
type Item struct {
	ID          int64   `db:"id"`
	OrderID     int64   `db:"order_id"`
	ProductID   int64   `db:"product_id"`
	ProductName string  `db:"product_name"`
	Amount      float64 `db:"amount"`
	UnitPrice   float64 `db:"unit_price"`
	TotalPrice  float64 `db:"total_price"`
}

// CanBeCancelled reports whether the owning customer may still self-cancel:
// the order is PENDING and the cancellation window has not elapsed.
func (o *Order) CanBeCancelled(now time.Time) bool {
	return o.Status == StatusPending && now.Sub(o.OrderTime) < CancellationWindow
}

// CancellationTimeRemaining is the number of whole minutes left in the
// customer cancellation window, floored at zero.
func (o *Order) CancellationTimeRemaining(now time.Time) int {
	remaining := CancellationWindow - now.Sub(o.OrderTime)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Minutes())
}
