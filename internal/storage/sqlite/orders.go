package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/suhanarda/greengrocer/internal/order"
)

// OrderRepo implements order.Repository.
type OrderRepo struct {
	db *sqlx.DB
}

// Ensure the facet implements the port at compile time.
var _ order.Repository = (*OrderRepo)(nil)

var createOrderQuery = `
	INSERT INTO orders
		(customer_id, order_time, requested_delivery, status,
		 subtotal, discount_amount, vat_amount, total_cost, coupon_code, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

var createOrderItemQuery = `
	INSERT INTO order_items
		(order_id, product_id, product_name, amount, unit_price, total_price)
	VALUES (?, ?, ?, ?, ?, ?)`

// Create persists the order and its items in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o *order.Order) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin create order: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, createOrderQuery,
		o.CustomerID, o.OrderTime, o.RequestedDelivery, string(o.Status),
		o.Subtotal, o.DiscountAmount, o.VATAmount, o.TotalCost, o.CouponCode, o.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert order: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: order id: %w", err)
	}

	for _, item := range o.Items {
		if _, err := tx.ExecContext(ctx, createOrderItemQuery,
			id, item.ProductID, item.ProductName, item.Amount, item.UnitPrice, item.TotalPrice,
		); err != nil {
			return 0, fmt.Errorf("sqlite: insert order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit create order: %w", err)
	}
	return id, nil
}

var getOrderQuery = `SELECT * FROM orders WHERE id = ?`

var getOrderItemsQuery = `SELECT * FROM order_items WHERE order_id = ? ORDER BY id`

// Get loads one order with its items.
func (r *OrderRepo) Get(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.GetContext(ctx, &o, getOrderQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("sqlite: get order %d: %w", id, err)
	}

	if err := r.db.SelectContext(ctx, &o.Items, getOrderItemsQuery, id); err != nil {
		return nil, fmt.Errorf("sqlite: get items for order %d: %w", id, err)
	}
	return &o, nil
}

var listByCustomerQuery = `SELECT * FROM orders WHERE customer_id = ? ORDER BY order_time DESC`

func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]order.Order, error) {
	return r.list(ctx, listByCustomerQuery, customerID)
}

var listByCarrierQuery = `SELECT * FROM orders WHERE carrier_id = ? ORDER BY order_time DESC`

func (r *OrderRepo) ListByCarrier(ctx context.Context, carrierID int64) ([]order.Order, error) {
	return r.list(ctx, listByCarrierQuery, carrierID)
}

var listByStatusQuery = `SELECT * FROM orders WHERE status = ? ORDER BY order_time`

func (r *OrderRepo) ListByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	return r.list(ctx, listByStatusQuery, string(status))
}

func (r *OrderRepo) list(ctx context.Context, query string, arg any) ([]order.Order, error) {
	var out []order.Order
	if err := r.db.SelectContext(ctx, &out, query, arg); err != nil {
		return nil, fmt.Errorf("sqlite: list orders: %w", err)
	}
	for i := range out {
		if err := r.db.SelectContext(ctx, &out[i].Items, getOrderItemsQuery, out[i].ID); err != nil {
			return nil, fmt.Errorf("sqlite: list order items: %w", err)
		}
	}
	return out, nil
}

// assignCarrierQuery is the claim race arbiter: the status guard in the WHERE
// clause means exactly one of two racing carriers updates the row.
var assignCarrierQuery = `
	UPDATE orders SET carrier_id = ?, status = ?
	WHERE id = ? AND status = ?`

func (r *OrderRepo) AssignCarrier(ctx context.Context, orderID, carrierID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, assignCarrierQuery,
		carrierID, string(order.StatusSelected), orderID, string(order.StatusPending))
	if err != nil {
		return false, fmt.Errorf("sqlite: assign carrier on order %d: %w", orderID, err)
	}
	return affected(res)
}

var markDeliveredQuery = `
	UPDATE orders SET status = ?, actual_delivery = ?
	WHERE id = ? AND status = ?`

// MarkDelivered is guarded on SELECTED so a cancelled order can never be
// flipped to delivered.
func (r *OrderRepo) MarkDelivered(ctx context.Context, orderID int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, markDeliveredQuery,
		string(order.StatusDelivered), at, orderID, string(order.StatusSelected))
	if err != nil {
		return false, fmt.Errorf("sqlite: mark order %d delivered: %w", orderID, err)
	}
	return affected(res)
}

var cancelOrderQuery = `
	UPDATE orders SET status = ?
	WHERE id = ? AND status IN (?, ?)`

// Cancel flips the order to CANCELLED iff it has not already reached a
// terminal state. The affected-row result is what makes stock restoration
// exactly-once: only the caller that actually flipped the status restores.
func (r *OrderRepo) Cancel(ctx context.Context, orderID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, cancelOrderQuery,
		string(order.StatusCancelled), orderID,
		string(order.StatusPending), string(order.StatusSelected))
	if err != nil {
		return false, fmt.Errorf("sqlite: cancel order %d: %w", orderID, err)
	}
	return affected(res)
}

var setInvoiceRefQuery = `UPDATE orders SET invoice_ref = ? WHERE id = ?`

func (r *OrderRepo) SetInvoiceRef(ctx context.Context, orderID int64, ref string) error {
	_, err := r.db.ExecContext(ctx, setInvoiceRefQuery, ref, orderID)
	if err != nil {
		return fmt.Errorf("sqlite: set invoice ref on order %d: %w", orderID, err)
	}
	return nil
}

// affected turns a RowsAffected count into the guarded-update bool result.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return n > 0, nil
}
