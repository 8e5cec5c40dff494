package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/suhanarda/greengrocer/internal/invoice"
)

// InvoiceRepo implements invoice.Store.
type InvoiceRepo struct {
	db *sqlx.DB
}

var _ invoice.Store = (*InvoiceRepo)(nil)

var saveInvoiceQuery = `
	INSERT INTO invoices (ref, order_id, artifact) VALUES (?, ?, ?)`

func (r *InvoiceRepo) SaveInvoice(ctx context.Context, ref string, orderID int64, artifact []byte) error {
	_, err := r.db.ExecContext(ctx, saveInvoiceQuery, ref, orderID, artifact)
	if err != nil {
		return fmt.Errorf("sqlite: save invoice %q for order %d: %w", ref, orderID, err)
	}
	return nil
}

var getInvoiceQuery = `SELECT artifact FROM invoices WHERE ref = ?`

// GetInvoice returns the stored artifact bytes for a reference.
func (r *InvoiceRepo) GetInvoice(ctx context.Context, ref string) ([]byte, error) {
	var artifact []byte
	if err := r.db.GetContext(ctx, &artifact, getInvoiceQuery, ref); err != nil {
		return nil, fmt.Errorf("sqlite: get invoice %q: %w", ref, err)
	}
	return artifact, nil
}
