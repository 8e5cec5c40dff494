package httpx

import (
	"time"

	"github.com/suhanarda/greengrocer/internal/cart"
	"github.com/suhanarda/greengrocer/internal/inventory"
	"github.com/suhanarda/greengrocer/internal/order"
	"github.com/suhanarda/greengrocer/internal/pricing"
)

type AddCartItemRequest struct {
	ProductID int64   `json:"product_id"`
	Amount    float64 `json:"amount"`
}

type SetCartAmountRequest struct {
	Amount float64 `json:"amount"`
}

type CheckoutRequest struct {
	CouponCode        string    `json:"coupon_code,omitempty"`
	RequestedDelivery time.Time `json:"requested_delivery"`
	Notes             string    `json:"notes,omitempty"`
}

type CreateProductRequest struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Stock     float64 `json:"stock"`
	Threshold float64 `json:"threshold"`
}

type CreateCouponRequest struct {
	Code         string     `json:"code"`
	DiscountType string     `json:"discount_type"`
	Value        float64    `json:"value"`
	MinCartValue float64    `json:"min_cart_value"`
	MaxUses      int        `json:"max_uses"`
	ValidFrom    time.Time  `json:"valid_from"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

type CreateCustomerRequest struct {
	Name           string  `json:"name"`
	LoyaltyPercent float64 `json:"loyalty_percent"`
}

type UpdateMinOrderAmountRequest struct {
	Amount float64 `json:"amount"`
}

type CartResponse struct {
	Items    []CartItemResponse `json:"items"`
	Subtotal float64            `json:"subtotal"`
}

type CartItemResponse struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Amount      float64 `json:"amount"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type ProductResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	UnitPrice    float64 `json:"unit_price"`
	DisplayPrice float64 `json:"display_price"`
	Stock        float64 `json:"stock"`
	Scarce       bool    `json:"scarce"`
}

type OrderResponse struct {
	ID                int64               `json:"id"`
	CustomerID        int64               `json:"customer_id"`
	CarrierID         *int64              `json:"carrier_id,omitempty"`
	Status            string              `json:"status"`
	OrderTime         time.Time           `json:"order_time"`
	RequestedDelivery time.Time           `json:"requested_delivery"`
	ActualDelivery    *time.Time          `json:"actual_delivery,omitempty"`
	Subtotal          float64             `json:"subtotal"`
	DiscountAmount    float64             `json:"discount_amount"`
	VATAmount         float64             `json:"vat_amount"`
	TotalCost         float64             `json:"total_cost"`
	CouponCode        *string             `json:"coupon_code,omitempty"`
	InvoiceRef        string              `json:"invoice_ref,omitempty"`
	Notes             string              `json:"notes,omitempty"`
	MinutesToCancel   int                 `json:"minutes_to_cancel"`
	Items             []OrderItemResponse `json:"items"`
}

type OrderItemResponse struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Amount      float64 `json:"amount"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

type CheckoutResponse struct {
	Order      OrderResponse `json:"order"`
	Quote      QuoteResponse `json:"quote"`
	InvoiceRef string        `json:"invoice_ref,omitempty"`
}

type QuoteResponse struct {
	Subtotal        float64 `json:"subtotal"`
	LoyaltyDiscount float64 `json:"loyalty_discount"`
	CouponDiscount  float64 `json:"coupon_discount"`
	Discount        float64 `json:"discount"`
	VAT             float64 `json:"vat"`
	Total           float64 `json:"total"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapCartToResponse(c *cart.Cart) CartResponse {
	resp := CartResponse{
		Items:    []CartItemResponse{},
		Subtotal: c.Subtotal(),
	}
	for _, line := range c.Lines() {
		resp.Items = append(resp.Items, CartItemResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Amount:      line.Amount,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.UnitPrice * line.Amount,
		})
	}
	return resp
}

func mapProductToResponse(p inventory.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Name:         p.Name,
		UnitPrice:    p.UnitPrice,
		DisplayPrice: p.DisplayPrice(),
		Stock:        p.Stock,
		Scarce:       p.IsBelowThreshold(),
	}
}

func mapOrderToResponse(o *order.Order, now time.Time) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		CustomerID:        o.CustomerID,
		CarrierID:         o.CarrierID,
		Status:            string(o.Status),
		OrderTime:         o.OrderTime,
		RequestedDelivery: o.RequestedDelivery,
		ActualDelivery:    o.ActualDelivery,
		Subtotal:          o.Subtotal,
		DiscountAmount:    o.DiscountAmount,
		VATAmount:         o.VATAmount,
		TotalCost:         o.TotalCost,
		CouponCode:        o.CouponCode,
		InvoiceRef:        o.InvoiceRef,
		Notes:             o.Notes,
		MinutesToCancel:   o.CancellationTimeRemaining(now),
		Items:             []OrderItemResponse{},
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Amount:      it.Amount,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return resp
}

func mapQuoteToResponse(q pricing.Quote) QuoteResponse {
	return QuoteResponse{
		Subtotal:        q.Subtotal,
		LoyaltyDiscount: q.LoyaltyDiscount,
		CouponDiscount:  q.CouponDiscount,
		Discount:        q.Discount,
		VAT:             q.VAT,
		Total:           q.Total,
	}
}
