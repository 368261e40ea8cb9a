package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTotalsThresholdMet(t *testing.T) {
	lines := []Line{{Qty: 3, UnitPrice: 50}, {Qty: 2, UnitPrice: 200}}
	rule := ShippingRule{ShippingCharge: 50, FreeShippingThreshold: 500}

	totals := ComputeTotals(lines, rule)
	require.Equal(t, Money(550), totals.Subtotal)
	require.Equal(t, Money(0), totals.ShippingFee)
	require.Equal(t, Money(550), totals.GrandTotal)
}

func TestComputeTotalsBelowThreshold(t *testing.T) {
	lines := []Line{{Qty: 3, UnitPrice: 50}, {Qty: 2, UnitPrice: 200}}
	rule := ShippingRule{ShippingCharge: 50, FreeShippingThreshold: 1000}

	totals := ComputeTotals(lines, rule)
	require.Equal(t, Money(550), totals.Subtotal)
	require.Equal(t, Money(50), totals.ShippingFee)
	require.Equal(t, Money(600), totals.GrandTotal)
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	totals := ComputeTotals(nil, ShippingRule{ShippingCharge: 50, FreeShippingThreshold: 1000})
	require.Equal(t, Money(0), totals.Subtotal)
	require.Equal(t, Money(0), totals.ShippingFee, "empty cart never pays shipping")
	require.Equal(t, Money(0), totals.GrandTotal)
}

func TestComputeTotalsZeroThresholdAlwaysFree(t *testing.T) {
	lines := []Line{{Qty: 2, UnitPrice: 10}}
	totals := ComputeTotals(lines, ShippingRule{ShippingCharge: 50})
	require.Equal(t, Money(20), totals.Subtotal)
	require.Equal(t, Money(0), totals.ShippingFee, "zero threshold is a valid always-free configuration")
	require.Equal(t, Money(20), totals.GrandTotal)
}

func TestComputeTotalsExactThresholdBoundary(t *testing.T) {
	lines := []Line{{Qty: 1, UnitPrice: 500}}
	totals := ComputeTotals(lines, ShippingRule{ShippingCharge: 50, FreeShippingThreshold: 500})
	require.Equal(t, Money(0), totals.ShippingFee)

	lines[0].UnitPrice = 499
	totals = ComputeTotals(lines, ShippingRule{ShippingCharge: 50, FreeShippingThreshold: 500})
	require.Equal(t, Money(50), totals.ShippingFee)
}

func TestComputeTotalsMonotonic(t *testing.T) {
	rule := ShippingRule{ShippingCharge: 40, FreeShippingThreshold: 300}
	lines := []Line{}
	prev := ComputeTotals(lines, rule)

	for _, add := range []Line{{Qty: 3, UnitPrice: 20}, {Qty: 2, UnitPrice: 90}, {Qty: 5, UnitPrice: 1}} {
		lines = append(lines, add)
		next := ComputeTotals(lines, rule)
		require.GreaterOrEqual(t, next.Subtotal, prev.Subtotal)
		require.GreaterOrEqual(t, next.GrandTotal, prev.GrandTotal)
		prev = next
	}
}

func TestComputeTotalsSkipsNonPositiveQuantities(t *testing.T) {
	lines := []Line{{Qty: 0, UnitPrice: 100}, {Qty: -2, UnitPrice: 100}, {Qty: 2, UnitPrice: 100}}
	totals := ComputeTotals(lines, ShippingRule{})
	require.Equal(t, Money(200), totals.Subtotal)
}
