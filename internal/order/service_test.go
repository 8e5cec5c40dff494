package order_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suhanarda/greengrocer/internal/coupon"
	"github.com/suhanarda/greengrocer/internal/customer"
	"github.com/suhanarda/greengrocer/internal/inventory"
	"github.com/suhanarda/greengrocer/internal/order"
	"github.com/suhanarda/greengrocer/internal/pkg/broker"
	"github.com/suhanarda/greengrocer/internal/storage/sqlite"
)

type capturingPublisher struct {
	mu     sync.Mutex
	events []broker.OrderEvent
}

func (p *capturingPublisher) PublishOrderEvent(event broker.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

func (p *capturingPublisher) captured() []broker.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]broker.OrderEvent, len(p.events))
	copy(out, p.events)
	return out
}

type fixture struct {
	store     *sqlite.Store
	service   *order.Service
	publisher *capturingPublisher
	custID    int64
	productID int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	custID, err := store.Customers().Create(ctx, &customer.Customer{Name: "Ayse", LoyaltyPercent: 5})
	require.NoError(t, err)
	productID, err := store.Inventory().CreateProduct(ctx, &inventory.Product{
		Name: "Tomatoes", UnitPrice: 4.5, Stock: 10, Threshold: 2,
	})
	require.NoError(t, err)

	pub := &capturingPublisher{}
	return &fixture{
		store:     store,
		service:   order.NewService(store.Orders(), store.Inventory(), store.Coupons(), pub),
		publisher: pub,
		custID:    custID,
		productID: productID,
	}
}

// placeOrder seeds an order directly, simulating what checkout leaves behind:
// stock already reserved, coupon already redeemed when one is attached.
func (f *fixture) placeOrder(t *testing.T, placedAt time.Time, couponCode *string) int64 {
	t.Helper()
	ctx := context.Background()

	ok, err := f.store.Inventory().Reduce(ctx, f.productID, 2)
	require.NoError(t, err)
	require.True(t, ok)

	id, err := f.store.Orders().Create(ctx, &order.Order{
		CustomerID:        f.custID,
		OrderTime:         placedAt,
		RequestedDelivery: placedAt.Add(4 * time.Hour),
		Status:            order.StatusPending,
		Subtotal:          9,
		VATAmount:         1.62,
		TotalCost:         10.62,
		CouponCode:        couponCode,
		Items: []order.Item{
			{ProductID: f.productID, ProductName: "Tomatoes", Amount: 2, UnitPrice: 4.5, TotalPrice: 9},
		},
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) stock(t *testing.T) float64 {
	t.Helper()
	p, err := f.store.Inventory().GetProduct(context.Background(), f.productID)
	require.NoError(t, err)
	return p.Stock
}

func TestClaimRace(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, time.Now(), nil)

	const carriers = 6
	errs := make([]error, carriers)
	var wg sync.WaitGroup
	for i := 0; i < carriers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = f.service.Claim(context.Background(), orderID, int64(200+n))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, order.ErrAlreadyTaken)
	}
	assert.Equal(t, 1, wins)

	got, err := f.service.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusSelected, got.Status)
	require.NotNil(t, got.CarrierID)
}

func TestMarkDeliveredNeedsACarrier(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, time.Now(), nil)

	err := f.service.MarkDelivered(context.Background(), orderID)
	assert.ErrorIs(t, err, order.ErrNotDeliverable)

	require.NoError(t, f.service.Claim(context.Background(), orderID, 7))
	require.NoError(t, f.service.MarkDelivered(context.Background(), orderID))

	got, err := f.service.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, got.Status)
	require.NotNil(t, got.ActualDelivery)

	// Delivered is terminal.
	err = f.service.MarkDelivered(context.Background(), orderID)
	assert.ErrorIs(t, err, order.ErrNotDeliverable)
}

func TestCustomerCancelRestoresStockOnce(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, time.Now(), nil)
	require.InDelta(t, 8.0, f.stock(t), 1e-9)

	err := f.service.Cancel(context.Background(), orderID, order.ActorCustomer, f.custID)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, f.stock(t), 1e-9)

	got, err := f.service.Get(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)

	// A second cancel, even by the owner, must not restore again.
	err = f.service.Cancel(context.Background(), orderID, order.ActorOwner, 0)
	assert.ErrorIs(t, err, order.ErrNotCancellable)
	assert.InDelta(t, 10.0, f.stock(t), 1e-9)
}

func TestCustomerCancelWindow(t *testing.T) {
	f := newFixture(t)
	stale := f.placeOrder(t, time.Now().Add(-2*time.Hour), nil)

	err := f.service.Cancel(context.Background(), stale, order.ActorCustomer, f.custID)
	assert.ErrorIs(t, err, order.ErrCancellationWindowExpired)
	assert.InDelta(t, 8.0, f.stock(t), 1e-9, "stock stays reserved when the cancel is refused")

	// The owner is not bound by the window.
	err = f.service.Cancel(context.Background(), stale, order.ActorOwner, 0)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, f.stock(t), 1e-9)
}

func TestCustomerCannotCancelSomeoneElsesOrder(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, time.Now(), nil)

	err := f.service.Cancel(context.Background(), orderID, order.ActorCustomer, f.custID+1)
	assert.ErrorIs(t, err, order.ErrNotOwned)
}

func TestCustomerCannotCancelSelectedOrder(t *testing.T) {
	f := newFixture(t)
	orderID := f.placeOrder(t, time.Now(), nil)
	require.NoError(t, f.service.Claim(context.Background(), orderID, 7))

	err := f.service.Cancel(context.Background(), orderID, order.ActorCustomer, f.custID)
	assert.ErrorIs(t, err, order.ErrNotCancellable)

	// A carrier can still walk away from a claimed order.
	err = f.service.Cancel(context.Background(), orderID, order.ActorCarrier, 7)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, f.stock(t), 1e-9)
}

func TestCancelReleasesCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.store.Coupons().Create(ctx, &coupon.Coupon{
		Code: "WELCOME10", DiscountType: coupon.Percent, Value: 10,
		MaxUses: 5, ValidFrom: time.Now().Add(-time.Hour), IsActive: true,
	})
	require.NoError(t, err)
	ok, err := f.store.Coupons().Redeem(ctx, "WELCOME10")
	require.NoError(t, err)
	require.True(t, ok)

	code := "WELCOME10"
	orderID := f.placeOrder(t, time.Now(), &code)

	require.NoError(t, f.service.Cancel(ctx, orderID, order.ActorCustomer, f.custID))

	c, err := f.store.Coupons().GetByCode(ctx, "WELCOME10")
	require.NoError(t, err)
	assert.Equal(t, 0, c.CurrentUses)
}

func TestLifecycleEventsPublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.placeOrder(t, time.Now(), nil)

	require.NoError(t, f.service.Claim(ctx, orderID, 7))
	require.NoError(t, f.service.MarkDelivered(ctx, orderID))

	events := f.publisher.captured()
	require.Len(t, events, 2)
	assert.Equal(t, "selected", events[0].Type)
	assert.Equal(t, "delivered", events[1].Type)
	assert.Equal(t, orderID, events[0].OrderID)
	assert.Equal(t, f.custID, events[0].CustomerID)
}

func TestListOpenOnlyShowsPendingOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open := f.placeOrder(t, time.Now(), nil)
	claimed := f.placeOrder(t, time.Now(), nil)
	require.NoError(t, f.service.Claim(ctx, claimed, 7))

	orders, err := f.service.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, open, orders[0].ID)
}
