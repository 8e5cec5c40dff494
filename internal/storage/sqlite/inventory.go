package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/suhanarda/greengrocer/internal/inventory"
)

// InventoryRepo implements the stock ledger and the product catalog.
type InventoryRepo struct {
	db *sqlx.DB
}

var (
	_ inventory.Ledger  = (*InventoryRepo)(nil)
	_ inventory.Catalog = (*InventoryRepo)(nil)
)

// reduceStockQuery is the whole point of the ledger: decrement and
// sufficiency check in one statement, so two checkouts racing on the same
// product serialise on the row and the loser simply matches zero rows.
var reduceStockQuery = `
	UPDATE products SET stock = stock - ?
	WHERE id = ? AND stock >= ?`

func (r *InventoryRepo) Reduce(ctx context.Context, productID int64, amount float64) (bool, error) {
	res, err := r.db.ExecContext(ctx, reduceStockQuery, amount, productID, amount)
	if err != nil {
		return false, fmt.Errorf("sqlite: reduce stock for product %d: %w", productID, err)
	}
	return affected(res)
}

var restoreStockQuery = `UPDATE products SET stock = stock + ? WHERE id = ?`

func (r *InventoryRepo) Restore(ctx context.Context, productID int64, amount float64) error {
	_, err := r.db.ExecContext(ctx, restoreStockQuery, amount, productID)
	if err != nil {
		return fmt.Errorf("sqlite: restore stock for product %d: %w", productID, err)
	}
	return nil
}

var getProductQuery = `SELECT * FROM products WHERE id = ?`

func (r *InventoryRepo) GetProduct(ctx context.Context, id int64) (*inventory.Product, error) {
	var p inventory.Product
	if err := r.db.GetContext(ctx, &p, getProductQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("sqlite: product %d not found", id)
		}
		return nil, fmt.Errorf("sqlite: get product %d: %w", id, err)
	}
	return &p, nil
}

var listProductsQuery = `SELECT * FROM products ORDER BY name`

func (r *InventoryRepo) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	var out []inventory.Product
	if err := r.db.SelectContext(ctx, &out, listProductsQuery); err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	return out, nil
}

var createProductQuery = `
	INSERT INTO products (name, unit_price, stock, threshold)
	VALUES (?, ?, ?, ?)`

func (r *InventoryRepo) CreateProduct(ctx context.Context, p *inventory.Product) (int64, error) {
	res, err := r.db.ExecContext(ctx, createProductQuery, p.Name, p.UnitPrice, p.Stock, p.Threshold)
	if err != nil {
		return 0, fmt.Errorf("sqlite: create product: %w", err)
	}
	return res.LastInsertId()
}
