package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayPriceDoublesWhenScarce(t *testing.T) {
	p := Product{Name: "Strawberries", UnitPrice: 12, Stock: 25, Threshold: 30}

	assert.True(t, p.IsBelowThreshold())
	assert.InDelta(t, 24.0, p.DisplayPrice(), 1e-9)

	p.Stock = 30
	assert.False(t, p.IsBelowThreshold(), "stock equal to the threshold is not scarce")
	assert.InDelta(t, 12.0, p.DisplayPrice(), 1e-9)

	p.Stock = 100
	assert.InDelta(t, 12.0, p.DisplayPrice(), 1e-9)
}

func TestDisplayPriceZeroThreshold(t *testing.T) {
	p := Product{Name: "Flour", UnitPrice: 2, Stock: 0, Threshold: 0}
	assert.False(t, p.IsBelowThreshold())
	assert.InDelta(t, 2.0, p.DisplayPrice(), 1e-9)
}
