package promo

import (
	"context"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/toybazaar/toybazaar/internal/catalog"
	"github.com/toybazaar/toybazaar/internal/pricing"
)

type memoryPromoRepo struct {
	deals     []HotDeal
	banners   []Banner
	listCalls int
}

func (r *memoryPromoRepo) ActiveDealByProduct(_ context.Context, productID string) (*HotDeal, error) {
	for _, d := range r.deals {
		if d.ProductID == productID && d.IsActive {
			deal := d
			return &deal, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryPromoRepo) ListActiveDeals(context.Context) ([]HotDeal, error) {
	r.listCalls++
	var active []HotDeal
	for _, d := range r.deals {
		if d.IsActive {
			active = append(active, d)
		}
	}
	return active, nil
}

func (r *memoryPromoRepo) CreateDeal(_ context.Context, deal HotDeal) (int64, error) {
	deal.ID = int64(len(r.deals) + 1)
	deal.IsActive = true
	r.deals = append(r.deals, deal)
	return deal.ID, nil
}

func (r *memoryPromoRepo) DeactivateDeal(_ context.Context, id int64) error {
	for i := range r.deals {
		if r.deals[i].ID == id {
			r.deals[i].IsActive = false
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryPromoRepo) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for i := range r.deals {
		d := r.deals[i]
		if d.IsActive && d.EndsAt != nil && !d.EndsAt.After(now) {
			r.deals[i].IsActive = false
			n++
		}
	}
	return n, nil
}

func (r *memoryPromoRepo) ListBanners(context.Context) ([]Banner, error) {
	return r.banners, nil
}

type memoryCatalogRepo struct {
	products map[string]catalog.Product
}

func (r *memoryCatalogRepo) GetByID(_ context.Context, id string) (*catalog.Product, error) {
	if p, ok := r.products[id]; ok {
		return &p, nil
	}
	return nil, catalog.ErrNotFound
}

func (r *memoryCatalogRepo) GetBySlug(context.Context, string) (*catalog.Product, error) {
	return nil, catalog.ErrNotFound
}

func (r *memoryCatalogRepo) List(context.Context, catalog.ListRequest) ([]catalog.Product, int, error) {
	return nil, 0, nil
}

func (r *memoryCatalogRepo) ListCategories(context.Context) ([]catalog.Category, error) {
	return nil, nil
}

func newPromoService(t *testing.T, repo *memoryPromoRepo, products map[string]catalog.Product) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	catalogSvc := catalog.NewService(&memoryCatalogRepo{products: products}, nil, NewDealSource(repo))
	return NewService(repo, catalogSvc, client, slog.Default(), time.Minute)
}

func TestHomeConfigResolvesDealPrices(t *testing.T) {
	future := time.Now().Add(2 * time.Hour)
	repo := &memoryPromoRepo{
		deals: []HotDeal{
			{ID: 1, ProductID: "p1", DiscountType: pricing.DiscountPercent, DiscountValue: 25, EndsAt: &future, IsActive: true},
		},
		banners: []Banner{{ID: 1, Title: "Summer Sale", Position: 1}},
	}
	svc := newPromoService(t, repo, map[string]catalog.Product{
		"p1": {ID: "p1", Name: "Race Car", Price: 100, IsActive: true},
	})

	cfg, err := svc.HomeConfig(context.Background())
	require.NoError(t, err)
	require.Len(t, cfg.Banners, 1)
	require.Len(t, cfg.HotDealsItems, 1)

	item := cfg.HotDealsItems[0]
	require.NotNil(t, item.DealPrice)
	require.Equal(t, pricing.Money(75), *item.DealPrice)
	require.Equal(t, pricing.Money(100), item.DisplayMRP)
	require.NotNil(t, item.EndsAt)
}

func TestHomeConfigFiltersExpiredDeals(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := &memoryPromoRepo{
		deals: []HotDeal{
			{ID: 1, ProductID: "p1", DiscountType: pricing.DiscountFlat, DiscountValue: 20, EndsAt: &past, IsActive: true},
		},
	}
	svc := newPromoService(t, repo, map[string]catalog.Product{
		"p1": {ID: "p1", Price: 100, IsActive: true},
	})

	cfg, err := svc.HomeConfig(context.Background())
	require.NoError(t, err)
	require.Empty(t, cfg.HotDealsItems, "expired deals never reach the payload")
}

func TestHomeConfigSkipsMissingProducts(t *testing.T) {
	repo := &memoryPromoRepo{
		deals: []HotDeal{
			{ID: 1, ProductID: "ghost", DiscountType: pricing.DiscountPercent, DiscountValue: 10, IsActive: true},
		},
	}
	svc := newPromoService(t, repo, map[string]catalog.Product{})

	cfg, err := svc.HomeConfig(context.Background())
	require.NoError(t, err)
	require.Empty(t, cfg.HotDealsItems)
}

func TestHomeConfigCaches(t *testing.T) {
	repo := &memoryPromoRepo{banners: []Banner{{ID: 1, Title: "Hero"}}}
	svc := newPromoService(t, repo, nil)
	ctx := context.Background()

	_, err := svc.HomeConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	_, err = svc.HomeConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls, "second read served from cache")
}

func TestSweepExpired(t *testing.T) {
	past := time.Now().Add(-time.Minute)
	future := time.Now().Add(time.Hour)
	repo := &memoryPromoRepo{
		deals: []HotDeal{
			{ID: 1, ProductID: "p1", EndsAt: &past, IsActive: true},
			{ID: 2, ProductID: "p2", EndsAt: &future, IsActive: true},
			{ID: 3, ProductID: "p3", IsActive: true},
		},
	}
	svc := newPromoService(t, repo, nil)

	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.False(t, repo.deals[0].IsActive)
	require.True(t, repo.deals[1].IsActive)
	require.True(t, repo.deals[2].IsActive, "open-ended deals are never swept")
}
