package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeDealPricePercent(t *testing.T) {
	require.Equal(t, Money(75), ComputeDealPrice(100, DiscountPercent, 25))
	require.Equal(t, Money(90), ComputeDealPrice(100, DiscountPercent, 10))
	// round to nearest whole unit
	require.Equal(t, Money(67), ComputeDealPrice(99, DiscountPercent, 32.5))
}

func TestComputeDealPriceFlat(t *testing.T) {
	require.Equal(t, Money(40), ComputeDealPrice(100, DiscountFlat, 60))
	require.Equal(t, Money(1), ComputeDealPrice(50, DiscountFlat, 60), "floored, not negative")
}

func TestComputeDealPriceNoDiscount(t *testing.T) {
	require.Equal(t, Money(120), ComputeDealPrice(120, DiscountNone, 50))
	require.Equal(t, Money(120), ComputeDealPrice(120, DiscountPercent, 0))
	require.Equal(t, Money(120), ComputeDealPrice(120, DiscountFlat, -5))
}

func TestComputeDealPriceNeverBelowOne(t *testing.T) {
	require.Equal(t, Money(1), ComputeDealPrice(10, DiscountPercent, 100))
	require.Equal(t, Money(1), ComputeDealPrice(10, DiscountPercent, 500))
	require.Equal(t, Money(1), ComputeDealPrice(1, DiscountFlat, 1_000_000))
}

func TestDealActive(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Second)

	require.True(t, DealActive(nil, now))
	require.True(t, DealActive(&future, now))
	require.False(t, DealActive(&past, now))
	require.False(t, DealActive(&now, now), "endsAt == now counts as expired")
}

func TestEffectiveDealPriceExpiredFallsBack(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	require.Equal(t, Money(100), EffectiveDealPrice(100, DiscountPercent, 25, &past, now))
	require.Equal(t, Money(75), EffectiveDealPrice(100, DiscountPercent, 25, &future, now))
	require.Equal(t, Money(75), EffectiveDealPrice(100, DiscountPercent, 25, nil, now))
}

func TestDisplayMRP(t *testing.T) {
	// deal undercuts the original price: original becomes the "was" price
	require.Equal(t, Money(100), DisplayMRP(100, 75, nil))

	// product already carries a higher MRP: that is preserved
	higher := Money(150)
	require.Equal(t, Money(150), DisplayMRP(100, 75, &higher))

	// MRP at or below the original does not override it
	lower := Money(90)
	require.Equal(t, Money(100), DisplayMRP(100, 75, &lower))

	// no discount in effect: the product MRP passes through
	require.Equal(t, Money(150), DisplayMRP(100, 100, &higher))
	require.Equal(t, Money(100), DisplayMRP(100, 100, nil))
}
