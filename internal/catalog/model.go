// Package catalog serves products and categories: postgres-backed listings
// with search and category filters, plus a short-lived redis read cache for
// product detail lookups.
package catalog

import (
	"time"

	"github.com/toybazaar/toybazaar/internal/pricing"
)

// Product is the closed, explicitly-typed catalog record. Optional fields are
// pointers; unknown fields coming from clients are rejected at decode time.
type Product struct {
	ID          string         `json:"id" db:"id"`
	Slug        string         `json:"slug" db:"slug"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description" db:"description"`
	CategoryID  int64          `json:"category_id" db:"category_id"`
	Price       pricing.Money  `json:"price" db:"price"`
	MRP         *pricing.Money `json:"mrp,omitempty" db:"mrp"`
	Stock       *int           `json:"stock,omitempty" db:"stock"`
	ImageURL    string         `json:"image_url" db:"image_url"`
	SaleEndTime *time.Time     `json:"sale_end_time,omitempty" db:"sale_end_time"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Category groups products for browsing.
type Category struct {
	ID       int64  `json:"id" db:"id"`
	Slug     string `json:"slug" db:"slug"`
	Name     string `json:"name" db:"name"`
	Position int    `json:"position" db:"position"`
}

// Deal is an active promotional discount attached to a product.
type Deal struct {
	Type   pricing.DiscountType `json:"type"`
	Value  float64              `json:"value"`
	EndsAt *time.Time           `json:"endsAt,omitempty"`
}

// ProductView is a product enriched with resolved deal pricing for display.
// SaleEndsIn is the server-rendered countdown label at response time; clients
// tick it down locally between fetches.
type ProductView struct {
	Product
	DealPrice       *pricing.Money `json:"deal_price,omitempty"`
	DisplayMRP      pricing.Money  `json:"display_mrp"`
	MinimumQuantity int            `json:"minimum_quantity"`
	SaleEndsIn      *string        `json:"sale_ends_in,omitempty"`
}

// ListRequest filters and pages a product listing.
type ListRequest struct {
	Search   string
	Category string
	Page     int
	PerPage  int
}
