package order

import (
	"context"
	"time"
)

// Repository is the order persistence port.
//
// The status-changing operations are conditional single-statement writes:
// they return (false, nil) when the status guard did not match, which is an
// expected concurrency outcome, not an error. Implementations must never use
// a read-check-then-write pair for these.
type Repository interface {
	// Create persists the order and its items in one transaction and returns
	// the new order ID.
	Create(ctx context.Context, o *Order) (int64, error)

	// Get loads an order with its items. Returns ErrNotFound when absent.
	Get(ctx context.Context, id int64) (*Order, error)

	ListByCustomer(ctx context.Context, customerID int64) ([]Order, error)
	ListByCarrier(ctx context.Context, carrierID int64) ([]Order, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)

	// AssignCarrier sets carrier_id and SELECTED iff the order is still
	// PENDING. Exactly one of two racing carriers sees true.
	AssignCarrier(ctx context.Context, orderID, carrierID int64) (bool, error)

	// MarkDelivered sets DELIVERED and the actual delivery time iff the order
	// is SELECTED.
	MarkDelivered(ctx context.Context, orderID int64, at time.Time) (bool, error)

	// Cancel sets CANCELLED iff the order is PENDING or SELECTED. The caller
	// restores stock only after a true result, which makes restoration
	// happen exactly once per order.
	Cancel(ctx context.Context, orderID int64) (bool, error)

	// SetInvoiceRef records the invoice artifact reference on the order.
	SetInvoiceRef(ctx context.Context, orderID int64, ref string) error
}
