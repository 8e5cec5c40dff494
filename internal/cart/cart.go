// Package cart implements the per-session shopping cart. A cart is an
// explicit object handed to whoever needs it; there is no process-wide
// current-cart singleton, so concurrent sessions never collide.
package cart

import (
	"sort"
	"sync"

	"github.com/suhanarda/greengrocer/internal/inventory"
	"github.com/suhanarda/greengrocer/internal/pricing"
)

// Line is one product in the cart. UnitPrice is the display price captured
// when the line was last touched; checkout re-snapshots it.
type Line struct {
	ProductID   int64
	ProductName string
	UnitPrice   float64
	Amount      float64
}

// Cart is a single customer session's cart. Safe for concurrent use: an HTTP
// session can have overlapping in-flight requests.
type Cart struct {
	mu         sync.Mutex
	customerID int64
	lines      map[int64]*Line
}

func New(customerID int64) *Cart {
	return &Cart{
		customerID: customerID,
		lines:      make(map[int64]*Line),
	}
}

func (c *Cart) CustomerID() int64 { return c.customerID }

// Add puts amount of the product in the cart, accumulating onto an existing
// line. The product's display price is snapshotted onto the line.
func (c *Cart) Add(p inventory.Product, amount float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if line, ok := c.lines[p.ID]; ok {
		line.Amount += amount
		line.UnitPrice = p.DisplayPrice()
		return
	}
	c.lines[p.ID] = &Line{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.DisplayPrice(),
		Amount:      amount,
	}
}

// SetAmount replaces the quantity of a line. A non-positive amount removes
// the line.
func (c *Cart) SetAmount(productID int64, amount float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if amount <= 0 {
		delete(c.lines, productID)
		return
	}
	if line, ok := c.lines[productID]; ok {
		line.Amount = amount
	}
}

func (c *Cart) Remove(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lines, productID)
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = make(map[int64]*Line)
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Lines returns a copy of the cart contents ordered by product ID, so
// callers can iterate without holding the cart lock.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Line, 0, len(c.lines))
	for _, line := range c.lines {
		out = append(out, *line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Subtotal prices the cart at the snapshotted line prices.
func (c *Cart) Subtotal() float64 {
	var sum float64
	for _, line := range c.Lines() {
		sum += line.UnitPrice * line.Amount
	}
	return sum
}

// PricingLines converts the cart into pricing calculator input.
func (c *Cart) PricingLines() []pricing.Line {
	lines := c.Lines()
	out := make([]pricing.Line, len(lines))
	for i, l := range lines {
		out[i] = pricing.Line{UnitPrice: l.UnitPrice, Amount: l.Amount}
	}
	return out
}

// Manager hands out the cart bound to a customer session. Carts live for the
// session only: cleared carts are dropped on logout or checkout.
type Manager struct {
	mu    sync.Mutex
	carts map[int64]*Cart
}

func NewManager() *Manager {
	return &Manager{carts: make(map[int64]*Cart)}
}

// Get returns the customer's cart, creating it on first use.
func (m *Manager) Get(customerID int64) *Cart {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.carts[customerID]
	if !ok {
		c = New(customerID)
		m.carts[customerID] = c
	}
	return c
}

// Drop discards the customer's cart entirely (logout).
func (m *Manager) Drop(customerID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, customerID)
}
