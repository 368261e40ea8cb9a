// Package promo owns the promotional surface: time-boxed hot deals and the
// home page configuration (banners plus deal items with resolved prices).
package promo

import (
	"time"

	"github.com/toybazaar/toybazaar/internal/catalog"
	"github.com/toybazaar/toybazaar/internal/pricing"
)

// HotDeal is the stored promotional descriptor for one product.
type HotDeal struct {
	ID            int64                `json:"id" db:"id"`
	ProductID     string               `json:"product_id" db:"product_id"`
	DiscountType  pricing.DiscountType `json:"discount_type" db:"discount_type"`
	DiscountValue float64              `json:"discount_value" db:"discount_value"`
	EndsAt        *time.Time           `json:"ends_at,omitempty" db:"ends_at"`
	Position      int                  `json:"position" db:"position"`
	IsActive      bool                 `json:"is_active" db:"is_active"`
	CreatedAt     time.Time            `json:"created_at" db:"created_at"`
}

// Banner is a promotional hero image on the home page.
type Banner struct {
	ID       int64  `json:"id" db:"id"`
	Title    string `json:"title" db:"title"`
	ImageURL string `json:"image_url" db:"image_url"`
	LinkURL  string `json:"link_url" db:"link_url"`
	Position int    `json:"position" db:"position"`
}

// HotDealItem is a deal joined with its product, priced for display.
type HotDealItem struct {
	catalog.ProductView
	EndsAt *time.Time `json:"endsAt,omitempty"`
}

// HomeConfig is the payload behind GET /home-config.
type HomeConfig struct {
	Banners       []Banner      `json:"banners"`
	HotDealsItems []HotDealItem `json:"hotDealsItems"`
	GeneratedAt   time.Time     `json:"generatedAt"`
}
