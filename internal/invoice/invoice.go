// Package invoice renders the invoice artifact for a completed checkout.
// Invoice generation is best-effort: a failure here never blocks the order.
package invoice

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/suhanarda/greengrocer/internal/customer"
	"github.com/suhanarda/greengrocer/internal/order"
)

// Generator produces an opaque invoice artifact plus the reference stored on
// the order.
type Generator interface {
	Generate(ctx context.Context, o *order.Order, cust *customer.Customer) (ref string, artifact []byte, err error)
}

// Store persists invoice artifacts keyed by their reference.
type Store interface {
	SaveInvoice(ctx context.Context, ref string, orderID int64, artifact []byte) error
}

// TextGenerator renders a plain-text invoice. The reference is a UUID so it
// can be handed to customers without exposing order IDs.
type TextGenerator struct{}

func NewTextGenerator() *TextGenerator { return &TextGenerator{} }

func (g *TextGenerator) Generate(_ context.Context, o *order.Order, cust *customer.Customer) (string, []byte, error) {
	ref := uuid.NewString()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "INVOICE %s\n", ref)
	fmt.Fprintf(&buf, "Order #%d for %s\n", o.ID, cust.Name)
	fmt.Fprintf(&buf, "Placed %s\n\n", o.OrderTime.Format("2006-01-02 15:04"))

	for _, item := range o.Items {
		fmt.Fprintf(&buf, "%-24s %8.3f x %8.2f = %10.2f\n",
			item.ProductName, item.Amount, item.UnitPrice, item.TotalPrice)
	}

	fmt.Fprintf(&buf, "\nSubtotal %10.2f\n", o.Subtotal)
	fmt.Fprintf(&buf, "Discount %10.2f\n", o.DiscountAmount)
	fmt.Fprintf(&buf, "VAT      %10.2f\n", o.VATAmount)
	fmt.Fprintf(&buf, "TOTAL    %10.2f\n", o.TotalCost)

	return ref, buf.Bytes(), nil
}
