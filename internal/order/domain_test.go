package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanBeCancelled(t *testing.T) {
	placed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{Status: StatusPending, OrderTime: placed}

	assert.True(t, o.CanBeCancelled(placed.Add(1*time.Minute)))
	assert.True(t, o.CanBeCancelled(placed.Add(59*time.Minute)))
	assert.False(t, o.CanBeCancelled(placed.Add(60*time.Minute)))
	assert.False(t, o.CanBeCancelled(placed.Add(3*time.Hour)))
}

func TestCanBeCancelledRequiresPending(t *testing.T) {
	placed := time.Now()
	for _, status := range []Status{StatusSelected, StatusDelivered, StatusCancelled} {
		o := &Order{Status: status, OrderTime: placed}
		assert.False(t, o.CanBeCancelled(placed.Add(time.Minute)), "status %s", status)
	}
}

func TestCancellationTimeRemaining(t *testing.T) {
	placed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &Order{Status: StatusPending, OrderTime: placed}

	assert.Equal(t, 60, o.CancellationTimeRemaining(placed))
	// 12:14:30 -> 45.5 minutes left, floored to 45.
	assert.Equal(t, 45, o.CancellationTimeRemaining(placed.Add(14*time.Minute+30*time.Second)))
	assert.Equal(t, 0, o.CancellationTimeRemaining(placed.Add(time.Hour)))
	assert.Equal(t, 0, o.CancellationTimeRemaining(placed.Add(2*time.Hour)))
}
