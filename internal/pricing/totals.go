package pricing

// Line describes a cart line used for totals calculation.
type Line struct {
	Qty       int
	UnitPrice Money
}

// ShippingRule is the read-only shipping fee snapshot fetched per session.
// The zero value means "always free", which is how totals behave before the
// asynchronous rule fetch resolves.
type ShippingRule struct {
	ShippingCharge        Money `json:"shippingCharge"`
	FreeShippingThreshold Money `json:"freeShippingThreshold"`
}

// Totals aggregates the computed cart amounts.
type Totals struct {
	Subtotal    Money `json:"subtotal"`
	ShippingFee Money `json:"shippingFee"`
	GrandTotal  Money `json:"grandTotal"`
}

// ComputeTotals calculates the subtotal, shipping fee and grand total for a
// cart. Shipping is waived for an empty cart and whenever the subtotal meets
// the free-shipping threshold; a zero threshold is trivially met.
func ComputeTotals(lines []Line, rule ShippingRule) Totals {
	var subtotal Money
	for _, ln := range lines {
		if ln.Qty <= 0 {
			continue
		}
		subtotal += Money(ln.Qty) * ln.UnitPrice
	}

	var shipping Money
	if subtotal > 0 && subtotal < rule.FreeShippingThreshold {
		shipping = rule.ShippingCharge
	}

	return Totals{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		GrandTotal:  subtotal + shipping,
	}
}
