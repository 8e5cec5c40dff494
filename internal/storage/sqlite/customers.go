package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/suhanarda/greengrocer/internal/customer"
)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	db *sqlx.DB
}

var _ customer.Repository = (*CustomerRepo)(nil)

var getCustomerQuery = `SELECT * FROM customers WHERE id = ?`

func (r *CustomerRepo) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	var c customer.Customer
	if err := r.db.GetContext(ctx, &c, getCustomerQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sqlite: customer %d not found", id)
		}
		return nil, fmt.Errorf("sqlite: get customer %d: %w", id, err)
	}
	return &c, nil
}

var createCustomerQuery = `
	INSERT INTO customers (name, loyalty_percent, total_orders)
	VALUES (?, ?, ?)`

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) (int64, error) {
	res, err := r.db.ExecContext(ctx, createCustomerQuery, c.Name, c.LoyaltyPercent, c.TotalOrders)
	if err != nil {
		return 0, fmt.Errorf("sqlite: create customer: %w", err)
	}
	return res.LastInsertId()
}

var incrementOrderCountQuery = `
	UPDATE customers SET total_orders = total_orders + 1 WHERE id = ?`

func (r *CustomerRepo) IncrementOrderCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, incrementOrderCountQuery, id)
	if err != nil {
		return fmt.Errorf("sqlite: increment order count for customer %d: %w", id, err)
	}
	return nil
}

var decrementOrderCountQuery = `
	UPDATE customers SET total_orders = total_orders - 1
	WHERE id = ? AND total_orders > 0`

func (r *CustomerRepo) DecrementOrderCount(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, decrementOrderCountQuery, id)
	if err != nil {
		return fmt.Errorf("sqlite: decrement order count for customer %d: %w", id, err)
	}
	return nil
}
