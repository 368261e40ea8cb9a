package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinimumOrderQuantity(t *testing.T) {
	for _, price := range []Money{1, 10, 45, 59} {
		require.Equal(t, 3, MinimumOrderQuantity(price), "price %d", price)
	}
	for _, price := range []Money{60, 61, 100, 5000} {
		require.Equal(t, 2, MinimumOrderQuantity(price), "price %d", price)
	}
}
