package pricing

// lowValueCutoff is the unit price below which the larger minimum batch applies.
const lowValueCutoff Money = 60

// MinimumOrderQuantity returns the smallest packet count a cart line may hold
// for a product at the given unit price. Low-unit-value items require a larger
// minimum batch to stay viable for wholesale fulfilment.
func MinimumOrderQuantity(unitPrice Money) int {
	if unitPrice < lowValueCutoff {
		return 3
	}
	return 2
}
