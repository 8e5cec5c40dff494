package cart

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/suhanarda/greengrocer/internal/inventory"
)

func TestAddAccumulates(t *testing.T) {
	c := New(1)
	apples := inventory.Product{ID: 3, Name: "Apples", UnitPrice: 2.5, Stock: 100, Threshold: 10}

	c.Add(apples, 1.5)
	c.Add(apples, 0.5)

	lines := c.Lines()
	assert.Len(t, lines, 1)
	assert.InDelta(t, 2.0, lines[0].Amount, 1e-9)
	assert.InDelta(t, 2.5, lines[0].UnitPrice, 1e-9)
	assert.InDelta(t, 5.0, c.Subtotal(), 1e-9)
}

func TestAddSnapshotsScarcityPrice(t *testing.T) {
	c := New(1)
	scarce := inventory.Product{ID: 7, Name: "Saffron", UnitPrice: 30, Stock: 2, Threshold: 5}

	c.Add(scarce, 1)

	// Below threshold, the display price doubles and the line captures it.
	assert.InDelta(t, 60.0, c.Lines()[0].UnitPrice, 1e-9)
}

func TestSetAmountAndRemove(t *testing.T) {
	c := New(1)
	p := inventory.Product{ID: 2, Name: "Milk", UnitPrice: 1.2, Stock: 50, Threshold: 5}

	c.Add(p, 2)
	c.SetAmount(2, 6)
	assert.InDelta(t, 6.0, c.Lines()[0].Amount, 1e-9)

	c.SetAmount(2, 0)
	assert.True(t, c.IsEmpty())

	c.Add(p, 1)
	c.Remove(2)
	assert.True(t, c.IsEmpty())
}

func TestClear(t *testing.T) {
	c := New(1)
	c.Add(inventory.Product{ID: 1, Name: "Bread", UnitPrice: 1, Stock: 10, Threshold: 1}, 1)
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Zero(t, c.Subtotal())
}

func TestManagerSessionScoping(t *testing.T) {
	m := NewManager()

	a := m.Get(1)
	b := m.Get(2)
	assert.NotSame(t, a, b)
	assert.Same(t, a, m.Get(1))

	a.Add(inventory.Product{ID: 1, Name: "Eggs", UnitPrice: 3, Stock: 20, Threshold: 2}, 1)
	assert.True(t, b.IsEmpty(), "carts must not leak across sessions")

	m.Drop(1)
	assert.True(t, m.Get(1).IsEmpty())
}

func TestConcurrentSessionsDoNotCollide(t *testing.T) {
	m := NewManager()
	p := inventory.Product{ID: 1, Name: "Rice", UnitPrice: 2, Stock: 1000, Threshold: 10}

	var wg sync.WaitGroup
	for id := int64(1); id <= 8; id++ {
		wg.Add(1)
		go func(customerID int64) {
			defer wg.Done()
			c := m.Get(customerID)
			for i := 0; i < 100; i++ {
				c.Add(p, 1)
			}
		}(id)
	}
	wg.Wait()

	for id := int64(1); id <= 8; id++ {
		assert.InDelta(t, 100.0, m.Get(id).Lines()[0].Amount, 1e-9)
	}
}
