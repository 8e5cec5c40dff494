package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/suhanarda/greengrocer/internal/coupon"
	"github.com/suhanarda/greengrocer/internal/inventory"
	"github.com/suhanarda/greengrocer/internal/pkg/broker"
	"github.com/suhanarda/greengrocer/internal/pkg/metrics"
)

// Actor identifies who is requesting a lifecycle transition. Customers are
// bound by ownership and the cancellation window; carriers and the owner
// are not.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorCarrier  Actor = "carrier"
	ActorOwner    Actor = "owner"
)

// Service drives order lifecycle transitions on top of the repository's
// conditional writes, restores stock on cancellation, and emits lifecycle
// events.
type Service struct {
	repo      Repository
	ledger    inventory.Ledger
	coupons   coupon.Repository
	publisher broker.Publisher // nil-safe: events skipped if nil
	now       func() time.Time
}

func NewService(repo Repository, ledger inventory.Ledger, coupons coupon.Repository, publisher broker.Publisher) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		coupons:   coupons,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *Service) ListByCarrier(ctx context.Context, carrierID int64) ([]Order, error) {
	return s.repo.ListByCarrier(ctx, carrierID)
}

// ListOpen returns the PENDING orders carriers can still claim.
func (s *Service) ListOpen(ctx context.Context) ([]Order, error) {
	return s.repo.ListByStatus(ctx, StatusPending)
}

func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return s.repo.ListByStatus(ctx, status)
}

// Claim assigns the order to the carrier. Losing the race to another carrier
// surfaces as ErrAlreadyTaken.
func (s *Service) Claim(ctx context.Context, orderID, carrierID int64) error {
	ok, err := s.repo.AssignCarrier(ctx, orderID, carrierID)
	if err != nil {
		metrics.RecordOrderOperation("claim", false)
		return fmt.Errorf("claim order %d: %w", orderID, err)
	}
	if !ok {
		metrics.CarrierRaceLosses.Inc()
		metrics.RecordOrderOperation("claim", false)
		return ErrAlreadyTaken
	}

	metrics.RecordOrderOperation("claim", true)
	slog.InfoContext(ctx, "order claimed", "order_id", orderID, "carrier_id", carrierID)
	s.publish(ctx, orderID, "selected", StatusSelected)
	return nil
}

// MarkDelivered completes a SELECTED order, recording the delivery time.
func (s *Service) MarkDelivered(ctx context.Context, orderID int64) error {
	ok, err := s.repo.MarkDelivered(ctx, orderID, s.now())
	if err != nil {
		metrics.RecordOrderOperation("deliver", false)
		return fmt.Errorf("mark order %d delivered: %w", orderID, err)
	}
	if !ok {
		metrics.RecordOrderOperation("deliver", false)
		return ErrNotDeliverable
	}

	metrics.RecordOrderOperation("deliver", true)
	slog.InfoContext(ctx, "order delivered", "order_id", orderID)
	s.publish(ctx, orderID, "delivered", StatusDelivered)
	return nil
}

// Cancel moves the order to CANCELLED and hands its reserved stock back.
//
// Customers may only cancel their own PENDING orders inside the cancellation
// window; carriers and the owner may cancel any PENDING or SELECTED order.
// Stock restoration runs only after the conditional status write succeeds, so
// a double cancel can never restore twice.
func (s *Service) Cancel(ctx context.Context, orderID int64, actor Actor, actorID int64) error {
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if actor == ActorCustomer {
		if o.CustomerID != actorID {
			return ErrNotOwned
		}
		if o.Status == StatusPending && !o.CanBeCancelled(s.now()) {
			return ErrCancellationWindowExpired
		}
		if o.Status != StatusPending {
			return ErrNotCancellable
		}
	}

	ok, err := s.repo.Cancel(ctx, orderID)
	if err != nil {
		metrics.RecordOrderOperation("cancel", false)
		return fmt.Errorf("cancel order %d: %w", orderID, err)
	}
	if !ok {
		metrics.RecordOrderOperation("cancel", false)
		return ErrNotCancellable
	}

	for _, item := range o.Items {
		if err := s.ledger.Restore(ctx, item.ProductID, item.Amount); err != nil {
			// The order is already cancelled; a failed restore must not undo
			// that. Log loudly and keep going with the remaining items.
			slog.ErrorContext(ctx, "failed to restore stock for cancelled order",
				"order_id", orderID,
				"product_id", item.ProductID,
				"amount", item.Amount,
				"error", err,
			)
		}
	}

	if o.CouponCode != nil {
		if err := s.coupons.Release(ctx, *o.CouponCode); err != nil {
			slog.ErrorContext(ctx, "failed to release coupon for cancelled order",
				"order_id", orderID, "coupon", *o.CouponCode, "error", err)
		}
	}

	metrics.RecordOrderOperation("cancel", true)
	slog.InfoContext(ctx, "order cancelled", "order_id", orderID, "actor", string(actor))
	s.publish(ctx, orderID, "cancelled", StatusCancelled)
	return nil
}

func (s *Service) publish(ctx context.Context, orderID int64, eventType string, status Status) {
	if s.publisher == nil {
		return
	}

	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		slog.WarnContext(ctx, "skipping event publish, order reload failed", "order_id", orderID, "error", err)
		return
	}

	event := broker.OrderEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Type:       eventType,
		Status:     string(status),
		Total:      o.TotalCost,
		Occurred:   s.now(),
	}
	if err := s.publisher.PublishOrderEvent(event); err != nil {
		slog.WarnContext(ctx, "failed to publish order event", "order_id", orderID, "type", eventType, "error", err)
	}
}
