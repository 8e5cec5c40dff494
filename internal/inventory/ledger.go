// Package inventory defines the product catalog types and the stock ledger
// port. The ledger is the only component allowed to change stock levels.
package inventory

import "context"

// Ledger is the atomic stock accounting port.
//
// Reduce must be implemented as a single conditional write (stock >= amount
// in the guard), never as a read followed by a write: two checkouts racing on
// the same product must serialise on the store, and the loser must see a
// plain false, not corrupted stock.
type Ledger interface {
	// Reduce decrements stock by amount iff enough stock remains. Returns
	// false when stock is insufficient at commit time.
	Reduce(ctx context.Context, productID int64, amount float64) (bool, error)

	// Restore increments stock by amount. Used when a cancelled order hands
	// its reserved stock back.
	Restore(ctx context.Context, productID int64, amount float64) error
}

// Catalog is the read/admin port for products.
type Catalog interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, p *Product) (int64, error)
}
