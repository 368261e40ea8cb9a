package promo

import (
	"context"
	"errors"

	"github.com/toybazaar/toybazaar/internal/catalog"
)

// DealSource adapts the promo repository to catalog.DealSource, letting the
// catalog resolve deal prices without depending on this package's service.
type DealSource struct {
	repo Repository
}

// NewDealSource constructs the adapter.
func NewDealSource(repo Repository) *DealSource {
	return &DealSource{repo: repo}
}

// DealFor implements catalog.DealSource.
func (d *DealSource) DealFor(ctx context.Context, productID string) (catalog.Deal, bool, error) {
	deal, err := d.repo.ActiveDealByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return catalog.Deal{}, false, nil
		}
		return catalog.Deal{}, false, err
	}
	return catalog.Deal{Type: deal.DiscountType, Value: deal.DiscountValue, EndsAt: deal.EndsAt}, true, nil
}

var _ catalog.DealSource = (*DealSource)(nil)
