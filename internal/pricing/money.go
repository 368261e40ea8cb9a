// Package pricing implements the cart pricing rules for the storefront:
// minimum order quantities, shipping fee thresholds, hot-deal discounts and
// deal countdown formatting. Every function here is pure; callers own state.
package pricing

// Money represents a monetary value in whole currency units. The toy catalog
// prices in whole rupees, so no fractional sub-units exist in this domain.
type Money = int64
