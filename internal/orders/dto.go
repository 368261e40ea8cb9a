package orders

import "github.com/toybazaar/toybazaar/internal/pricing"

// PlaceOrderRequest is the checkout payload. The client sends the figures it
// displayed so the server can detect drift between what the buyer saw and
// what the catalog prices now.
type PlaceOrderRequest struct {
	AddressID     int64            `json:"address_id" validate:"required,gt=0"`
	PaymentMethod string           `json:"payment_method" validate:"required,oneof=COD ONLINE"`
	Lines         []PlaceOrderLine `json:"lines" validate:"required,min=1,dive"`
	Subtotal      pricing.Money    `json:"subtotal" validate:"gte=0"`
	ShippingFee   pricing.Money    `json:"shipping_fee" validate:"gte=0"`
	GrandTotal    pricing.Money    `json:"grand_total" validate:"gte=0"`
}

// PlaceOrderLine is one cart line as the client saw it.
type PlaceOrderLine struct {
	ProductID string        `json:"product_id" validate:"required,uuid4"`
	Quantity  int           `json:"quantity" validate:"required,gt=0"`
	UnitPrice pricing.Money `json:"unit_price" validate:"gte=0"`
}

// UpdateStatusRequest moves an order along its lifecycle (back office only).
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=PAID SHIPPED DELIVERED CANCELLED"`
}
