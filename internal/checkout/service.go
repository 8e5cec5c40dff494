// Package checkout turns a shopping cart into a priced, stock-reserved,
// PENDING order. The persistence steps run as a compensated sequence: a
// failure anywhere rolls back every prior write, so an order row can never
// outlive its stock reservation or vice versa.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/suhanarda/greengrocer/internal/cart"
	"github.com/suhanarda/greengrocer/internal/checkout/checkoutlog"
	"github.com/suhanarda/greengrocer/internal/coupon"
	"github.com/suhanarda/greengrocer/internal/customer"
	"github.com/suhanarda/greengrocer/internal/inventory"
	"github.com/suhanarda/greengrocer/internal/invoice"
	"github.com/suhanarda/greengrocer/internal/order"
	"github.com/suhanarda/greengrocer/internal/pkg/broker"
	"github.com/suhanarda/greengrocer/internal/pkg/metrics"
	"github.com/suhanarda/greengrocer/internal/pricing"
	"github.com/suhanarda/greengrocer/internal/settings"
)

// Deps are the collaborators the checkout service composes. Journal,
// Publisher and Invoices are optional (nil disables them).
type Deps struct {
	Orders    order.Repository
	Ledger    inventory.Ledger
	Coupons   coupon.Repository
	Customers customer.Repository
	Settings  settings.Provider
	Invoices  invoice.Generator
	InvStore  invoice.Store
	Journal   checkoutlog.Repository
	Publisher broker.Publisher
}

// Service orchestrates the checkout sequence.
type Service struct {
	deps Deps
	now  func() time.Time
}

func NewService(deps Deps) *Service {
	return &Service{deps: deps, now: time.Now}
}

// Request is one checkout attempt for a customer session.
type Request struct {
	Customer          *customer.Customer
	Cart              *cart.Cart
	CouponCode        string
	RequestedDelivery time.Time
	Notes             string
}

// Result is the outcome of a successful checkout.
type Result struct {
	Order      *order.Order
	Quote      pricing.Quote
	InvoiceRef string
}

// Checkout validates the request, prices the cart, persists the order and
// runs the compensated side-effect sequence. The cart is cleared only after
// everything else succeeded.
//
// Contention outcomes (ErrInsufficientStock, ErrCouponExhausted) are normal
// results of concurrent shopping: the caller should tell the customer
// someone else got there first, not report a system error.
func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	now := s.now()

	// Phase 1: validation. Nothing below touches the store until all checks
	// pass, so failures here have no side effects.
	if req.Cart == nil || req.Cart.IsEmpty() {
		metrics.RecordOrderOperation("checkout", false)
		return nil, ErrEmptyCart
	}

	appliedCoupon, err := s.resolveCoupon(ctx, req, now)
	if err != nil {
		metrics.RecordOrderOperation("checkout", false)
		return nil, err
	}

	quote := pricing.Calculate(req.Cart.PricingLines(), req.Customer.LoyaltyPercent, appliedCoupon)

	minAmount, err := s.deps.Settings.MinOrderAmount(ctx)
	if err != nil {
		metrics.RecordOrderOperation("checkout", false)
		return nil, fmt.Errorf("load minimum order amount: %w", err)
	}
	if quote.Subtotal < minAmount {
		metrics.RecordOrderOperation("checkout", false)
		return nil, fmt.Errorf("subtotal %.2f below %.2f: %w", quote.Subtotal, minAmount, ErrBelowMinimum)
	}

	if err := validateDeliverySlot(req.RequestedDelivery, now); err != nil {
		metrics.RecordOrderOperation("checkout", false)
		return nil, err
	}

	// Phase 2: persist the order, then run the compensated side effects.
	o := s.buildOrder(req, quote, appliedCoupon, now)

	orderID, err := s.deps.Orders.Create(ctx, o)
	if err != nil {
		metrics.RecordOrderOperation("checkout", false)
		return nil, fmt.Errorf("persist order: %w", err)
	}
	o.ID = orderID
	for i := range o.Items {
		o.Items[i].OrderID = orderID
	}

	steps := []Step{
		newReserveStockStep(s.deps.Ledger, o.Items),
	}
	if appliedCoupon != nil {
		steps = append(steps, newRedeemCouponStep(s.deps.Coupons, appliedCoupon.Code))
	}
	steps = append(steps, newCountOrderStep(s.deps.Customers, o.CustomerID))

	run := NewOrchestrator(strconv.FormatInt(orderID, 10), steps, s.deps.Journal, s.payload(req, quote))
	if err := run.Start(ctx); err != nil {
		// The side-effect steps compensated themselves; the order row is
		// taken back through the same guarded cancel every other path uses.
		if ok, cancelErr := s.deps.Orders.Cancel(ctx, orderID); cancelErr != nil || !ok {
			slog.ErrorContext(ctx, "CRITICAL: failed to cancel order after checkout rollback",
				"order_id", orderID, "checkout_error", err, "cancel_error", cancelErr)
		}
		if isStockConflict(err) {
			metrics.StockConflicts.Inc()
		}
		metrics.RecordOrderOperation("checkout", false)
		return nil, err
	}

	// Phase 3: best-effort tail. The order is committed; invoice or event
	// trouble is logged, never surfaced as a checkout failure.
	invoiceRef := s.generateInvoice(ctx, o, req.Customer)

	s.publishCreated(ctx, o)

	req.Cart.Clear()

	metrics.RecordOrderOperation("checkout", true)
	slog.InfoContext(ctx, "checkout completed",
		"order_id", o.ID, "customer_id", o.CustomerID, "total", o.TotalCost)

	return &Result{Order: o, Quote: quote, InvoiceRef: invoiceRef}, nil
}

// resolveCoupon loads and validates the coupon named in the request. An
// empty code means no coupon. A coupon that exists but cannot be applied is
// a validation error, surfaced before any persistence.
func (s *Service) resolveCoupon(ctx context.Context, req Request, now time.Time) (*coupon.Coupon, error) {
	if req.CouponCode == "" {
		return nil, nil
	}

	c, err := s.deps.Coupons.GetByCode(ctx, req.CouponCode)
	if err != nil {
		return nil, fmt.Errorf("load coupon %q: %w", req.CouponCode, err)
	}
	if !c.CanApply(req.Cart.Subtotal(), now) {
		return nil, fmt.Errorf("coupon %q: %w", req.CouponCode, ErrCouponNotApplicable)
	}
	return c, nil
}

// buildOrder assembles the order aggregate, snapshotting product names and
// display prices off the cart lines so later catalog changes never rewrite
// history.
func (s *Service) buildOrder(req Request, quote pricing.Quote, c *coupon.Coupon, now time.Time) *order.Order {
	o := &order.Order{
		CustomerID:        req.Customer.ID,
		OrderTime:         now,
		RequestedDelivery: req.RequestedDelivery,
		Status:            order.StatusPending,
		Subtotal:          quote.Subtotal,
		DiscountAmount:    quote.Discount,
		VATAmount:         quote.VAT,
		TotalCost:         quote.Total,
		Notes:             req.Notes,
	}
	if c != nil {
		code := c.Code
		o.CouponCode = &code
	}

	for _, line := range req.Cart.Lines() {
		o.Items = append(o.Items, order.Item{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Amount:      line.Amount,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.UnitPrice * line.Amount,
		})
	}
	return o
}

func (s *Service) generateInvoice(ctx context.Context, o *order.Order, cust *customer.Customer) string {
	if s.deps.Invoices == nil {
		return ""
	}

	ref, artifact, err := s.deps.Invoices.Generate(ctx, o, cust)
	if err != nil {
		slog.WarnContext(ctx, "invoice generation failed", "order_id", o.ID, "error", err)
		return ""
	}
	if s.deps.InvStore != nil {
		if err := s.deps.InvStore.SaveInvoice(ctx, ref, o.ID, artifact); err != nil {
			slog.WarnContext(ctx, "failed to store invoice", "order_id", o.ID, "error", err)
			return ""
		}
	}
	if err := s.deps.Orders.SetInvoiceRef(ctx, o.ID, ref); err != nil {
		slog.WarnContext(ctx, "failed to set invoice reference", "order_id", o.ID, "error", err)
		return ""
	}
	o.InvoiceRef = ref
	return ref
}

func (s *Service) publishCreated(ctx context.Context, o *order.Order) {
	if s.deps.Publisher == nil {
		return
	}
	event := broker.OrderEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		Type:       "created",
		Status:     string(o.Status),
		Total:      o.TotalCost,
		Occurred:   s.now(),
	}
	if err := s.deps.Publisher.PublishOrderEvent(event); err != nil {
		slog.WarnContext(ctx, "failed to publish order created event", "order_id", o.ID, "error", err)
	}
}

// payload is the JSON snapshot stored on the checkout log's STARTED row.
func (s *Service) payload(req Request, quote pricing.Quote) string {
	snapshot := struct {
		CustomerID int64       `json:"customer_id"`
		Lines      []cart.Line `json:"lines"`
		CouponCode string      `json:"coupon_code,omitempty"`
		Subtotal   float64     `json:"subtotal"`
		Total      float64     `json:"total"`
	}{
		CustomerID: req.Customer.ID,
		Lines:      req.Cart.Lines(),
		CouponCode: req.CouponCode,
		Subtotal:   quote.Subtotal,
		Total:      quote.Total,
	}
	b, err := json.Marshal(snapshot)
	if err != nil {
		return ""
	}
	return string(b)
}

func isStockConflict(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}
