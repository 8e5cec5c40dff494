// Package httpx is the HTTP surface of the shop: cart manipulation,
// checkout, order lifecycle actions and the owner's admin endpoints.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/suhanarda/greengrocer/internal/cart"
	"github.com/suhanarda/greengrocer/internal/checkout"
	"github.com/suhanarda/greengrocer/internal/coupon"
	"github.com/suhanarda/greengrocer/internal/customer"
	"github.com/suhanarda/greengrocer/internal/httpx/middlewares"
	"github.com/suhanarda/greengrocer/internal/inventory"
	"github.com/suhanarda/greengrocer/internal/order"
	"github.com/suhanarda/greengrocer/internal/settings"
)

// InvoiceReader fetches stored invoice artifacts by reference.
type InvoiceReader interface {
	GetInvoice(ctx context.Context, ref string) ([]byte, error)
}

// Handler handles incoming HTTP requests for carts, checkout and orders.
type Handler struct {
	carts     *cart.Manager
	checkouts *checkout.Service
	orders    *order.Service
	catalog   inventory.Catalog
	coupons   coupon.Repository
	customers customer.Repository
	settings  settings.Store
	invoices  InvoiceReader // nil-safe: invoice download disabled if nil
}

func NewHandler(
	carts *cart.Manager,
	checkouts *checkout.Service,
	orders *order.Service,
	catalog inventory.Catalog,
	coupons coupon.Repository,
	customers customer.Repository,
	settingsStore settings.Store,
	invoices InvoiceReader,
) *Handler {
	return &Handler{
		carts:     carts,
		checkouts: checkouts,
		orders:    orders,
		catalog:   catalog,
		coupons:   coupons,
		customers: customers,
		settings:  settingsStore,
		invoices:  invoices,
	}
}

// --- catalog ---

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_error", err.Error())
		return
	}
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, mapProductToResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Name == "" || req.UnitPrice <= 0 || req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "name and a positive unit_price are required")
		return
	}

	id, err := h.catalog.CreateProduct(r.Context(), &inventory.Product{
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Stock:     req.Stock,
		Threshold: req.Threshold,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_error", err.Error())
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "catalog_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, mapProductToResponse(*p))
}

// --- cart ---

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, mapCartToResponse(h.carts.Get(identity.ID)))
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())

	var req AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount must be positive")
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, http.StatusNotFound, "product_not_found", err.Error())
		return
	}

	c := h.carts.Get(identity.ID)
	c.Add(*p, req.Amount)
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) SetCartAmount(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())
	productID, err := pathID(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", "")
		return
	}

	var req SetCartAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	c := h.carts.Get(identity.ID)
	c.SetAmount(productID, req.Amount)
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())
	productID, err := pathID(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_product_id", "")
		return
	}

	c := h.carts.Get(identity.ID)
	c.Remove(productID)
	writeJSON(w, http.StatusOK, mapCartToResponse(c))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())
	h.carts.Drop(identity.ID)
	w.WriteHeader(http.StatusNoContent)
}

// --- checkout ---

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	cust, err := h.customers.Get(r.Context(), identity.ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "customer_not_found", err.Error())
		return
	}

	result, err := h.checkouts.Checkout(r.Context(), checkout.Request{
		Customer:          cust,
		Cart:              h.carts.Get(identity.ID),
		CouponCode:        req.CouponCode,
		RequestedDelivery: req.RequestedDelivery,
		Notes:             req.Notes,
	})
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CheckoutResponse{
		Order:      mapOrderToResponse(result.Order, time.Now()),
		Quote:      mapQuoteToResponse(result.Quote),
		InvoiceRef: result.InvoiceRef,
	})
}

// --- orders ---

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())
	ctx := r.Context()

	var (
		orders []order.Order
		err    error
	)
	switch identity.Role {
	case middlewares.RoleCustomer:
		orders, err = h.orders.ListByCustomer(ctx, identity.ID)
	case middlewares.RoleCarrier:
		orders, err = h.orders.ListByCarrier(ctx, identity.ID)
	case middlewares.RoleOwner:
		status := order.Status(r.URL.Query().Get("status"))
		if status == "" {
			status = order.StatusPending
		}
		orders, err = h.orders.ListByStatus(ctx, status)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "order_list_error", err.Error())
		return
	}

	now := time.Now()
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, mapOrderToResponse(&orders[i], now))
	}
	writeJSON(w, http.StatusOK, out)
}

// ListOpenOrders shows the PENDING orders a carrier can claim.
func (h *Handler) ListOpenOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOpen(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "order_list_error", err.Error())
		return
	}

	now := time.Now()
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, mapOrderToResponse(&orders[i], now))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "")
		return
	}

	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	if identity.Role == middlewares.RoleCustomer && o.CustomerID != identity.ID {
		writeError(w, http.StatusForbidden, "not_your_order", "")
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o, time.Now()))
}

func (h *Handler) ClaimOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "")
		return
	}

	if err := h.orders.Claim(r.Context(), orderID, identity.ID); err != nil {
		writeOrderError(w, err)
		return
	}

	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o, time.Now()))
}

func (h *Handler) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "")
		return
	}

	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	if o.CarrierID == nil || *o.CarrierID != identity.ID {
		writeError(w, http.StatusForbidden, "not_your_delivery", "")
		return
	}

	if err := h.orders.MarkDelivered(r.Context(), orderID); err != nil {
		writeOrderError(w, err)
		return
	}

	o, err = h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o, time.Now()))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	identity, _ := middlewares.IdentityFromContext(r.Context())
	orderID, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_order_id", "")
		return
	}

	if err := h.orders.Cancel(r.Context(), orderID, actorFor(identity.Role), identity.ID); err != nil {
		writeOrderError(w, err)
		return
	}

	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o, time.Now()))
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	if h.invoices == nil {
		writeError(w, http.StatusNotFound, "invoices_disabled", "")
		return
	}
	ref := chi.URLParam(r, "ref")
	artifact, err := h.invoices.GetInvoice(r.Context(), ref)
	if err != nil {
		writeError(w, http.StatusNotFound, "invoice_not_found", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact)
}

// --- admin ---

func (h *Handler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CreateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	dt := coupon.DiscountType(req.DiscountType)
	if dt != coupon.Percent && dt != coupon.Fixed {
		writeError(w, http.StatusBadRequest, "invalid_discount_type", "discount_type must be PERCENT or FIXED")
		return
	}
	if req.Code == "" || req.Value <= 0 || req.MaxUses <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "code, a positive value and max_uses are required")
		return
	}

	c := coupon.Coupon{
		Code:         req.Code,
		DiscountType: dt,
		Value:        req.Value,
		MinCartValue: req.MinCartValue,
		MaxUses:      req.MaxUses,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
		IsActive:     true,
	}
	if c.ValidFrom.IsZero() {
		c.ValidFrom = time.Now()
	}

	if _, err := h.coupons.Create(r.Context(), &c); err != nil {
		writeError(w, http.StatusInternalServerError, "coupon_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	id, err := h.customers.Create(r.Context(), &customer.Customer{
		Name:           req.Name,
		LoyaltyPercent: req.LoyaltyPercent,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "customer_error", err.Error())
		return
	}

	cust, err := h.customers.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "customer_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, cust)
}

func (h *Handler) UpdateMinOrderAmount(w http.ResponseWriter, r *http.Request) {
	var req UpdateMinOrderAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.Amount < 0 {
		writeError(w, http.StatusBadRequest, "invalid_amount", "amount must not be negative")
		return
	}

	value := strconv.FormatFloat(req.Amount, 'f', -1, 64)
	if err := h.settings.PutSetting(r.Context(), settings.KeyMinOrderAmount, value); err != nil {
		writeError(w, http.StatusInternalServerError, "settings_error", err.Error())
		return
	}
	slog.InfoContext(r.Context(), "minimum order amount updated", "amount", req.Amount)
	w.WriteHeader(http.StatusNoContent)
}

// --- plumbing ---

func actorFor(role middlewares.Role) order.Actor {
	switch role {
	case middlewares.RoleCarrier:
		return order.ActorCarrier
	case middlewares.RoleOwner:
		return order.ActorOwner
	default:
		return order.ActorCustomer
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// writeCheckoutError maps checkout outcomes onto status codes: validation
// problems are the client's fault, contention is a conflict, anything else is
// a server error.
func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrBelowMinimum):
		writeError(w, http.StatusUnprocessableEntity, "below_minimum", err.Error())
	case errors.Is(err, checkout.ErrCouponNotApplicable):
		writeError(w, http.StatusUnprocessableEntity, "coupon_not_applicable", err.Error())
	case errors.Is(err, checkout.ErrNoDeliverySlot),
		errors.Is(err, checkout.ErrDeliveryInPast),
		errors.Is(err, checkout.ErrDeliveryTooFar),
		errors.Is(err, checkout.ErrDeliveryTooSoon):
		writeError(w, http.StatusUnprocessableEntity, "invalid_delivery_slot", err.Error())
	case errors.Is(err, checkout.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, checkout.ErrCouponExhausted):
		writeError(w, http.StatusConflict, "coupon_exhausted", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "checkout_failed", err.Error())
	}
}

func writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, order.ErrAlreadyTaken):
		writeError(w, http.StatusConflict, "order_already_taken", err.Error())
	case errors.Is(err, order.ErrNotDeliverable):
		writeError(w, http.StatusConflict, "order_not_deliverable", err.Error())
	case errors.Is(err, order.ErrNotCancellable):
		writeError(w, http.StatusConflict, "order_not_cancellable", err.Error())
	case errors.Is(err, order.ErrCancellationWindowExpired):
		writeError(w, http.StatusConflict, "cancellation_window_expired", err.Error())
	case errors.Is(err, order.ErrNotOwned):
		writeError(w, http.StatusForbidden, "not_your_order", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "order_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
