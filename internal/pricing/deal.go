package pricing

import (
	"math"
	"time"
)

// DiscountType enumerates how a hot-deal discount value is interpreted.
type DiscountType string

const (
	DiscountNone    DiscountType = "NONE"
	DiscountPercent DiscountType = "PERCENT"
	DiscountFlat    DiscountType = "FLAT"
)

// minDealPrice is the floor for any computed deal price. A discount can never
// drive a price to zero or below.
const minDealPrice Money = 1

// ComputeDealPrice applies a hot-deal discount to a base price, rounding to
// the nearest whole currency unit and flooring at one unit.
func ComputeDealPrice(basePrice Money, discountType DiscountType, discountValue float64) Money {
	if discountValue <= 0 {
		return basePrice
	}

	var price Money
	switch discountType {
	case DiscountPercent:
		price = Money(math.Round(float64(basePrice) - float64(basePrice)*discountValue/100))
	case DiscountFlat:
		price = Money(math.Round(float64(basePrice) - discountValue))
	default:
		return basePrice
	}

	if price < minDealPrice {
		return minDealPrice
	}
	return price
}

// DealActive reports whether a deal window is still open at the given instant.
// A nil end time means the deal never expires.
func DealActive(endsAt *time.Time, now time.Time) bool {
	return endsAt == nil || endsAt.After(now)
}

// EffectiveDealPrice resolves the price of a product under a possibly expired
// deal. Expired deals fall back to the base price; the expiry filter lives
// here, outside ComputeDealPrice itself.
func EffectiveDealPrice(basePrice Money, discountType DiscountType, discountValue float64, endsAt *time.Time, now time.Time) Money {
	if !DealActive(endsAt, now) {
		return basePrice
	}
	return ComputeDealPrice(basePrice, discountType, discountValue)
}

// DisplayMRP chooses the "was" price shown next to a discounted deal price.
// When the deal price undercuts the original price, the original price becomes
// the strike-through value, unless the product already carries a higher MRP.
func DisplayMRP(originalPrice, dealPrice Money, productMRP *Money) Money {
	if productMRP != nil && *productMRP > originalPrice {
		return *productMRP
	}
	if dealPrice < originalPrice {
		return originalPrice
	}
	if productMRP != nil {
		return *productMRP
	}
	return originalPrice
}
