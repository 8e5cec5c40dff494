package inventory

// Product is a catalog entry. Stock is a decimal because weight-based items
// (e.g. 0.5 kg of tomatoes) are sold in fractional units.
type Product struct {
	ID        int64   `db:"id"`
	Name      string  `db:"name"`
	UnitPrice float64 `db:"unit_price"`
	Stock     float64 `db:"stock"`
	Threshold float64 `db:"threshold"`
}

// IsBelowThreshold reports whether remaining stock has dropped under the
// scarcity threshold configured for the product.
func (p Product) IsBelowThreshold() bool {
	return p.Stock < p.Threshold
}

// DisplayPrice is the effective unit price: doubled while the product is
// scarce. Order items snapshot this value at checkout time.
func (p Product) DisplayPrice() float64 {
	if p.IsBelowThreshold() {
		return p.UnitPrice * 2
	}
	return p.UnitPrice
}
