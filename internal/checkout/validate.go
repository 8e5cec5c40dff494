package checkout

import "time"

// Delivery window rules: slots must fall on a day within the next 30 days,
// start within 48 hours of now, and same-day slots must still be at least 30
// minutes away when the order is placed.
const (
	maxDeliveryDays    = 30
	maxSlotLead        = 48 * time.Hour
	minSameDaySlotLead = 30 * time.Minute
)

// validateDeliverySlot checks the requested delivery slot against the
// wall-clock time of the call. It has no side effects.
func validateDeliverySlot(requested, now time.Time) error {
	if requested.IsZero() {
		return ErrNoDeliverySlot
	}
	if requested.Before(now) {
		return ErrDeliveryInPast
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	requestedDay := time.Date(requested.Year(), requested.Month(), requested.Day(), 0, 0, 0, 0, requested.Location())

	if requestedDay.After(today.AddDate(0, 0, maxDeliveryDays)) {
		return ErrDeliveryTooFar
	}
	if requested.Sub(now) > maxSlotLead {
		return ErrDeliveryTooFar
	}

	if requestedDay.Equal(today) && requested.Sub(now) < minSameDaySlotLead {
		return ErrDeliveryTooSoon
	}

	return nil
}
