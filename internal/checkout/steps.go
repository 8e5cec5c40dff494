package checkout

import (
	"context"
	"fmt"

	"github.com/suhanarda/greengrocer/internal/coupon"
	"github.com/suhanarda/greengrocer/internal/customer"
	"github.com/suhanarda/greengrocer/internal/inventory"
	"github.com/suhanarda/greengrocer/internal/order"
)

// --- reserveStockStep ---

// reserveStockStep decrements stock for every order item. The reservation is
// all-or-nothing: if any item fails the conditional decrement, the items
// already reserved by this step are restored before the error is returned,
// so the orchestrator never sees a half-reserved order.
type reserveStockStep struct {
	ledger   inventory.Ledger
	items    []order.Item
	reserved []order.Item
}

func newReserveStockStep(ledger inventory.Ledger, items []order.Item) *reserveStockStep {
	return &reserveStockStep{ledger: ledger, items: items}
}

func (s *reserveStockStep) Name() string { return "reserve_stock" }

func (s *reserveStockStep) Execute(ctx context.Context) error {
	for _, item := range s.items {
		ok, err := s.ledger.Reduce(ctx, item.ProductID, item.Amount)
		if err != nil {
			s.undo(ctx)
			return fmt.Errorf("reduce stock for product %d: %w", item.ProductID, err)
		}
		if !ok {
			// Another customer checked out this product first.
			s.undo(ctx)
			return fmt.Errorf("product %d: %w", item.ProductID, ErrInsufficientStock)
		}
		s.reserved = append(s.reserved, item)
	}
	return nil
}

func (s *reserveStockStep) Compensate(ctx context.Context) error {
	s.undo(ctx)
	return nil
}

func (s *reserveStockStep) undo(ctx context.Context) {
	for i := len(s.reserved) - 1; i >= 0; i-- {
		item := s.reserved[i]
		_ = s.ledger.Restore(ctx, item.ProductID, item.Amount)
	}
	s.reserved = nil
}

// --- redeemCouponStep ---

// redeemCouponStep burns one use of the applied coupon. The increment is
// conditional on the usage cap inside the store, so a near-exhausted coupon
// applied by two concurrent checkouts yields exactly one success.
type redeemCouponStep struct {
	coupons  coupon.Repository
	code     string
	redeemed bool
}

func newRedeemCouponStep(coupons coupon.Repository, code string) *redeemCouponStep {
	return &redeemCouponStep{coupons: coupons, code: code}
}

func (s *redeemCouponStep) Name() string { return "redeem_coupon" }

func (s *redeemCouponStep) Execute(ctx context.Context) error {
	ok, err := s.coupons.Redeem(ctx, s.code)
	if err != nil {
		return fmt.Errorf("redeem coupon %q: %w", s.code, err)
	}
	if !ok {
		return fmt.Errorf("coupon %q: %w", s.code, ErrCouponExhausted)
	}
	s.redeemed = true
	return nil
}

func (s *redeemCouponStep) Compensate(ctx context.Context) error {
	if !s.redeemed {
		return nil
	}
	return s.coupons.Release(ctx, s.code)
}

// --- countOrderStep ---

// countOrderStep bumps the customer's lifetime order counter.
type countOrderStep struct {
	customers  customer.Repository
	customerID int64
}

func newCountOrderStep(customers customer.Repository, customerID int64) *countOrderStep {
	return &countOrderStep{customers: customers, customerID: customerID}
}

func (s *countOrderStep) Name() string { return "count_order" }

func (s *countOrderStep) Execute(ctx context.Context) error {
	if err := s.customers.IncrementOrderCount(ctx, s.customerID); err != nil {
		return fmt.Errorf("increment order count for customer %d: %w", s.customerID, err)
	}
	return nil
}

func (s *countOrderStep) Compensate(ctx context.Context) error {
	return s.customers.DecrementOrderCount(ctx, s.customerID)
}
