package catalog

import (
	"context"
	"time"

	"github.com/toybazaar/toybazaar/internal/cart"
	"github.com/toybazaar/toybazaar/internal/pricing"
	"github.com/toybazaar/toybazaar/internal/shared"
)

// DealSource reports the promotional deal attached to a product, if any.
// Implemented by the promo service; expired deals are filtered by the caller.
type DealSource interface {
	DealFor(ctx context.Context, productID string) (Deal, bool, error)
}

// Service wraps catalog reads with caching and deal-price resolution.
type Service struct {
	repo  Repository
	cache *Cache
	deals DealSource
	now   func() time.Time
}

// NewService constructs a Service. deals may be nil when promotions are not wired.
func NewService(repo Repository, cache *Cache, deals DealSource) *Service {
	return &Service{repo: repo, cache: cache, deals: deals, now: time.Now}
}

// InvalidateProduct drops a product from the read cache. Checkout calls this
// after decrementing stock so cart resolution picks up the new ceiling
// immediately instead of waiting out the cache TTL.
func (s *Service) InvalidateProduct(ctx context.Context, id string) {
	s.cache.Invalidate(ctx, id)
}

// Get returns a product by id through the read cache.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.cache.FetchProduct(ctx, id, func(ctx context.Context) (*Product, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// GetView returns a product with its deal price and display MRP resolved.
func (s *Service) GetView(ctx context.Context, id string) (*ProductView, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, p), nil
}

// GetViewBySlug resolves a product by slug for detail pages.
func (s *Service) GetViewBySlug(ctx context.Context, slug string) (*ProductView, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, p), nil
}

// List returns a filtered, paginated product listing with deal prices applied.
func (s *Service) List(ctx context.Context, req ListRequest) ([]ProductView, shared.Pagination, error) {
	products, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	views := make([]ProductView, 0, len(products))
	for i := range products {
		views = append(views, *s.buildView(ctx, &products[i]))
	}
	return views, shared.NewPagination(req.Page, req.PerPage, total), nil
}

// Categories lists the browsing categories.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// ResolveForCart implements cart.ProductResolver.
func (s *Service) ResolveForCart(ctx context.Context, productID string) (cart.ProductRef, error) {
	p, err := s.Get(ctx, productID)
	if err != nil {
		return cart.ProductRef{}, cart.ErrProductUnavailable
	}
	return cart.ProductRef{
		ID:        p.ID,
		UnitPrice: s.effectivePrice(ctx, p),
		Stock:     p.Stock,
	}, nil
}

// EffectivePrice is the price a buyer pays right now: the deal price while an
// active deal is attached, the base price otherwise.
func (s *Service) EffectivePrice(ctx context.Context, p *Product) pricing.Money {
	return s.effectivePrice(ctx, p)
}

func (s *Service) effectivePrice(ctx context.Context, p *Product) pricing.Money {
	deal, ok := s.activeDeal(ctx, p.ID)
	if !ok {
		return p.Price
	}
	return pricing.ComputeDealPrice(p.Price, deal.Type, deal.Value)
}

func (s *Service) activeDeal(ctx context.Context, productID string) (Deal, bool) {
	if s.deals == nil {
		return Deal{}, false
	}
	deal, ok, err := s.deals.DealFor(ctx, productID)
	if err != nil || !ok {
		return Deal{}, false
	}
	if !pricing.DealActive(deal.EndsAt, s.now()) {
		return Deal{}, false
	}
	return deal, true
}

func (s *Service) buildView(ctx context.Context, p *Product) *ProductView {
	view := &ProductView{
		Product:         *p,
		DisplayMRP:      pricing.DisplayMRP(p.Price, p.Price, p.MRP),
		MinimumQuantity: pricing.MinimumOrderQuantity(p.Price),
	}
	if deal, ok := s.activeDeal(ctx, p.ID); ok {
		dealPrice := pricing.ComputeDealPrice(p.Price, deal.Type, deal.Value)
		if dealPrice < p.Price {
			view.DealPrice = &dealPrice
			view.DisplayMRP = pricing.DisplayMRP(p.Price, dealPrice, p.MRP)
			view.MinimumQuantity = pricing.MinimumOrderQuantity(dealPrice)
			view.SaleEndTime = deal.EndsAt
			if deal.EndsAt != nil {
				if label, active := pricing.FormatTimeRemaining(*deal.EndsAt, s.now()); active {
					view.SaleEndsIn = &label
				}
			}
		}
	}
	return view
}
