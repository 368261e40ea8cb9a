package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/toybazaar/toybazaar/internal/pricing"
)

var testNow = time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)

func ref(id string, price pricing.Money) ProductRef {
	return ProductRef{ID: id, UnitPrice: price}
}

func refWithStock(id string, price pricing.Money, stock int) ProductRef {
	return ProductRef{ID: id, UnitPrice: price, Stock: &stock}
}

func TestSetLineQuantityCreatesAndUpdates(t *testing.T) {
	snap := Snapshot{}.SetLineQuantity(ref("p1", 50), 3, testNow)
	require.Equal(t, 3, snap.Quantity("p1"))

	snap = snap.SetLineQuantity(ref("p1", 50), 7, testNow)
	require.Equal(t, 7, snap.Quantity("p1"))
	require.Len(t, snap.Lines, 1)
}

func TestSetLineQuantityZeroRemoves(t *testing.T) {
	snap := Snapshot{}.SetLineQuantity(ref("p1", 50), 3, testNow)
	snap = snap.SetLineQuantity(ref("p1", 50), 0, testNow)
	require.True(t, snap.IsEmpty(), "a zero-quantity line is removed, never kept")

	// removing an absent line is a no-op
	snap = snap.SetLineQuantity(ref("p2", 80), -1, testNow)
	require.True(t, snap.IsEmpty())
}

func TestRemoveAndReAddRoundTrip(t *testing.T) {
	snap := Snapshot{}.SetLineQuantity(ref("p1", 50), 4, testNow)
	snap = snap.SetLineQuantity(ref("p2", 200), 2, testNow)
	before := snap

	snap = snap.Remove("p1", testNow)
	require.Equal(t, 0, snap.Quantity("p1"))

	snap = snap.SetLineQuantity(ref("p1", 50), 4, testNow)
	require.Equal(t, before.Quantity("p1"), snap.Quantity("p1"))
	require.Equal(t, before.Quantity("p2"), snap.Quantity("p2"))
	require.Equal(t, before.Totals(pricing.ShippingRule{}), snap.Totals(pricing.ShippingRule{}))
}

func TestIncrementStartsAtMinimum(t *testing.T) {
	// below the cutoff the minimum batch is 3
	snap, capped := Snapshot{}.Increment(ref("cheap", 40), testNow)
	require.False(t, capped)
	require.Equal(t, 3, snap.Quantity("cheap"))

	// at or above the cutoff it is 2
	snap, capped = Snapshot{}.Increment(ref("dear", 60), testNow)
	require.False(t, capped)
	require.Equal(t, 2, snap.Quantity("dear"))
}

func TestIncrementStockCeiling(t *testing.T) {
	p := refWithStock("p1", 100, 3)

	snap, capped := Snapshot{}.Increment(p, testNow)
	require.False(t, capped)
	snap, capped = snap.Increment(p, testNow)
	require.False(t, capped)
	require.Equal(t, 3, snap.Quantity("p1"))

	// beyond stock: unchanged snapshot, signaled as at capacity
	next, capped := snap.Increment(p, testNow)
	require.True(t, capped)
	require.Equal(t, 3, next.Quantity("p1"))
}

func TestDecrementAtMinimumRemovesLine(t *testing.T) {
	cheap := ref("cheap", 40) // minimum 3
	snap := Snapshot{}.SetLineQuantity(cheap, 3, testNow)
	snap = snap.Decrement(cheap, testNow)
	require.True(t, snap.IsEmpty(), "decrement at the minimum removes, never settles at minimum-1")

	dear := ref("dear", 90) // minimum 2
	snap = Snapshot{}.SetLineQuantity(dear, 4, testNow)
	snap = snap.Decrement(dear, testNow)
	require.Equal(t, 3, snap.Quantity("dear"))
	snap = snap.Decrement(dear, testNow)
	require.Equal(t, 2, snap.Quantity("dear"))
	snap = snap.Decrement(dear, testNow)
	require.Equal(t, 0, snap.Quantity("dear"))
}

func TestDecrementAbsentLineIsNoOp(t *testing.T) {
	snap := Snapshot{}.Decrement(ref("ghost", 50), testNow)
	require.True(t, snap.IsEmpty())
}

func TestMutationsDoNotAliasPriorSnapshot(t *testing.T) {
	first := Snapshot{}.SetLineQuantity(ref("p1", 50), 3, testNow)
	second := first.SetLineQuantity(ref("p1", 50), 9, testNow)

	require.Equal(t, 3, first.Quantity("p1"))
	require.Equal(t, 9, second.Quantity("p1"))
}

func TestSnapshotTotals(t *testing.T) {
	snap := Snapshot{}.SetLineQuantity(ref("p1", 50), 3, testNow)
	snap = snap.SetLineQuantity(ref("p2", 200), 2, testNow)

	totals := snap.Totals(pricing.ShippingRule{ShippingCharge: 50, FreeShippingThreshold: 500})
	require.Equal(t, pricing.Money(550), totals.Subtotal)
	require.Equal(t, pricing.Money(0), totals.ShippingFee)
	require.Equal(t, pricing.Money(550), totals.GrandTotal)
}
