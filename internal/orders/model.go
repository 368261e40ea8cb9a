// Package orders implements checkout: it revalidates the submitted cart
// against the live catalog, recomputes totals server-side, persists the order
// atomically and hands follow-up work to the background worker.
package orders

import (
	"time"

	"github.com/toybazaar/toybazaar/internal/pricing"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPlaced    Status = "PLACED"
	StatusPaid      Status = "PAID"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// Order is a placed storefront order.
type Order struct {
	ID            int64         `json:"id" db:"id"`
	Number        string        `json:"number" db:"number"`
	CustomerID    int64         `json:"customer_id" db:"customer_id"`
	AddressID     int64         `json:"address_id" db:"address_id"`
	Status        Status        `json:"status" db:"status"`
	PaymentMethod string        `json:"payment_method" db:"payment_method"`
	Subtotal      pricing.Money `json:"subtotal" db:"subtotal"`
	ShippingFee   pricing.Money `json:"shipping_fee" db:"shipping_fee"`
	GrandTotal    pricing.Money `json:"grand_total" db:"grand_total"`
	PlacedAt      time.Time     `json:"placed_at" db:"placed_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
	Lines         []Line        `json:"lines,omitempty" db:"-"`
}

// Line is one product position on an order. Unit price and line total are the
// server-resolved figures at placement time, deal pricing included.
type Line struct {
	ID        int64         `json:"id" db:"id"`
	OrderID   int64         `json:"order_id" db:"order_id"`
	ProductID string        `json:"product_id" db:"product_id"`
	Name      string        `json:"name" db:"name"`
	Quantity  int           `json:"quantity" db:"quantity"`
	UnitPrice pricing.Money `json:"unit_price" db:"unit_price"`
	LineTotal pricing.Money `json:"line_total" db:"line_total"`
}
