// Package cart owns the device-scoped shopping cart and wishlist: quantity
// bookkeeping against product minimums and stock, totals against the current
// shipping rule, and redis persistence of both.
package cart

import (
	"time"

	"github.com/toybazaar/toybazaar/internal/pricing"
)

// Line is one product selection in a cart. The product is referenced by id,
// never owned; unit price and stock are resolved at mutation time.
type Line struct {
	ProductID string        `json:"productId"`
	Quantity  int           `json:"quantity"`
	UnitPrice pricing.Money `json:"unitPrice"`
}

// Snapshot is an immutable view of a cart. Mutation helpers return fresh
// snapshots; callers never observe in-place changes.
type Snapshot struct {
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductRef carries the product facts a cart mutation needs.
type ProductRef struct {
	ID        string
	UnitPrice pricing.Money
	Stock     *int
}

// WishlistItem records a product saved for later.
type WishlistItem struct {
	ProductID string    `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
}

func (s Snapshot) find(productID string) (int, bool) {
	for i, ln := range s.Lines {
		if ln.ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

// Quantity returns the current quantity for a product, zero when absent.
func (s Snapshot) Quantity(productID string) int {
	if i, ok := s.find(productID); ok {
		return s.Lines[i].Quantity
	}
	return 0
}

// IsEmpty reports whether the cart holds no lines.
func (s Snapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}

func (s Snapshot) clone() Snapshot {
	lines := make([]Line, len(s.Lines))
	copy(lines, s.Lines)
	return Snapshot{Lines: lines, UpdatedAt: s.UpdatedAt}
}

// SetLineQuantity creates or updates a line to exactly qty. A non-positive
// qty removes the line; removing an absent line is a no-op. The engine accepts
// any positive quantity here: the minimum-order rule is enforced by Decrement
// and again at checkout, not inside this mutation.
func (s Snapshot) SetLineQuantity(ref ProductRef, qty int, now time.Time) Snapshot {
	next := s.clone()
	next.UpdatedAt = now

	i, ok := next.find(ref.ID)
	if qty <= 0 {
		if ok {
			next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
		}
		return next
	}

	line := Line{ProductID: ref.ID, Quantity: qty, UnitPrice: ref.UnitPrice}
	if ok {
		next.Lines[i] = line
	} else {
		next.Lines = append(next.Lines, line)
	}
	return next
}

// Increment raises a line's quantity by one, starting new lines at the
// product's minimum order quantity. When stock is defined and already reached,
// the snapshot is returned unchanged and atCapacity is true; that is a signal,
// not an error.
func (s Snapshot) Increment(ref ProductRef, now time.Time) (Snapshot, bool) {
	current := s.Quantity(ref.ID)

	next := current + 1
	if current == 0 {
		next = pricing.MinimumOrderQuantity(ref.UnitPrice)
	}
	if ref.Stock != nil && next > *ref.Stock {
		return s, true
	}
	return s.SetLineQuantity(ref, next, now), false
}

// Decrement lowers a line's quantity by one, except at exactly the minimum
// order quantity, where the line is removed outright. The quantity never
// settles below the minimum.
func (s Snapshot) Decrement(ref ProductRef, now time.Time) Snapshot {
	current := s.Quantity(ref.ID)
	if current == 0 {
		return s
	}
	if current <= pricing.MinimumOrderQuantity(ref.UnitPrice) {
		return s.SetLineQuantity(ref, 0, now)
	}
	return s.SetLineQuantity(ref, current-1, now)
}

// Remove deletes a line regardless of quantity.
func (s Snapshot) Remove(productID string, now time.Time) Snapshot {
	return s.SetLineQuantity(ProductRef{ID: productID}, 0, now)
}

// Clear empties the cart.
func (s Snapshot) Clear(now time.Time) Snapshot {
	return Snapshot{UpdatedAt: now}
}

// Totals computes the cart amounts against a shipping rule snapshot. The rule
// may still be the zero-value default while its fetch is in flight.
func (s Snapshot) Totals(rule pricing.ShippingRule) pricing.Totals {
	lines := make([]pricing.Line, 0, len(s.Lines))
	for _, ln := range s.Lines {
		lines = append(lines, pricing.Line{Qty: ln.Quantity, UnitPrice: ln.UnitPrice})
	}
	return pricing.ComputeTotals(lines, rule)
}
