// Package customer holds the customer read model the checkout needs: loyalty
// status and the order counter.
package customer

import "context"

// Customer is the slice of the account the order core cares about.
type Customer struct {
	ID             int64   `db:"id"`
	Name           string  `db:"name"`
	LoyaltyPercent float64 `db:"loyalty_percent"`
	TotalOrders    int     `db:"total_orders"`
}

type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	Create(ctx context.Context, c *Customer) (int64, error)

	// IncrementOrderCount bumps total_orders after a successful checkout.
	IncrementOrderCount(ctx context.Context, id int64) error

	// DecrementOrderCount compensates a failed checkout. Floors at zero.
	DecrementOrderCount(ctx context.Context, id int64) error
}
