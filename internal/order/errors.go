package order

import "errors"

var (
	// ErrNotFound is returned when an order ID does not exist.
	ErrNotFound = errors.New("order: not found")

	// ErrAlreadyTaken means another carrier claimed the order first. This is
	// a frequent, expected outcome of the claim race, not a system failure.
	ErrAlreadyTaken = errors.New("order: already taken by another carrier")

	// ErrNotDeliverable means the order is not in the SELECTED state.
	ErrNotDeliverable = errors.New("order: not selected for delivery")

	// ErrNotCancellable means the order already reached a terminal state.
	ErrNotCancellable = errors.New("order: no longer cancellable")

	// ErrCancellationWindowExpired means the customer's 60-minute
	// self-cancellation window has elapsed.
	ErrCancellationWindowExpired = errors.New("order: cancellation window expired")

	// ErrNotOwned means the acting customer does not own the order.
	ErrNotOwned = errors.New("order: not owned by this customer")
)
