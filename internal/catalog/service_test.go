package catalog

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/toybazaar/toybazaar/internal/pricing"
)

type memoryRepo struct {
	products map[string]Product
	getCalls int
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*Product, error) {
	r.getCalls++
	if p, ok := r.products[id]; ok {
		return &p, nil
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) GetBySlug(_ context.Context, slug string) (*Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) List(_ context.Context, _ ListRequest) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) ListCategories(context.Context) ([]Category, error) {
	return nil, nil
}

type memoryDeals struct {
	deals map[string]Deal
}

func (d memoryDeals) DealFor(_ context.Context, productID string) (Deal, bool, error) {
	deal, ok := d.deals[productID]
	return deal, ok, nil
}

func newCatalogService(t *testing.T, repo *memoryRepo, deals DealSource) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(repo, NewCache(client, time.Minute), deals)
}

func TestGetCachesProduct(t *testing.T) {
	repo := &memoryRepo{products: map[string]Product{
		"p1": {ID: "p1", Slug: "dino-set", Name: "Dino Set", Price: 120, IsActive: true},
	}}
	svc := newCatalogService(t, repo, nil)
	ctx := context.Background()

	p, err := svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Dino Set", p.Name)
	require.Equal(t, 1, repo.getCalls)

	_, err = svc.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, repo.getCalls, "second read served from cache")
}

func TestGetViewAppliesActiveDeal(t *testing.T) {
	future := time.Now().Add(time.Hour)
	repo := &memoryRepo{products: map[string]Product{
		"p1": {ID: "p1", Price: 100, IsActive: true},
	}}
	deals := memoryDeals{deals: map[string]Deal{
		"p1": {Type: pricing.DiscountPercent, Value: 25, EndsAt: &future},
	}}
	svc := newCatalogService(t, repo, deals)

	view, err := svc.GetView(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, view.DealPrice)
	require.Equal(t, pricing.Money(75), *view.DealPrice)
	require.Equal(t, pricing.Money(100), view.DisplayMRP, "original price becomes the displayed was-price")
}

func TestGetViewExpiredDealFallsBack(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := &memoryRepo{products: map[string]Product{
		"p1": {ID: "p1", Price: 100, IsActive: true},
	}}
	deals := memoryDeals{deals: map[string]Deal{
		"p1": {Type: pricing.DiscountPercent, Value: 25, EndsAt: &past},
	}}
	svc := newCatalogService(t, repo, deals)

	view, err := svc.GetView(context.Background(), "p1")
	require.NoError(t, err)
	require.Nil(t, view.DealPrice)
}

func TestGetViewPreservesHigherProductMRP(t *testing.T) {
	mrp := pricing.Money(180)
	repo := &memoryRepo{products: map[string]Product{
		"p1": {ID: "p1", Price: 100, MRP: &mrp, IsActive: true},
	}}
	deals := memoryDeals{deals: map[string]Deal{
		"p1": {Type: pricing.DiscountFlat, Value: 30},
	}}
	svc := newCatalogService(t, repo, deals)

	view, err := svc.GetView(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, pricing.Money(180), view.DisplayMRP)
}

func TestResolveForCartUsesDealPrice(t *testing.T) {
	stock := 8
	repo := &memoryRepo{products: map[string]Product{
		"p1": {ID: "p1", Price: 100, Stock: &stock, IsActive: true},
	}}
	deals := memoryDeals{deals: map[string]Deal{
		"p1": {Type: pricing.DiscountPercent, Value: 50},
	}}
	svc := newCatalogService(t, repo, deals)

	ref, err := svc.ResolveForCart(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, pricing.Money(50), ref.UnitPrice)
	require.NotNil(t, ref.Stock)
	require.Equal(t, 8, *ref.Stock)
}

func TestInvalidateProductRefreshesStockCeiling(t *testing.T) {
	stock := 5
	repo := &memoryRepo{products: map[string]Product{
		"p1": {ID: "p1", Price: 100, Stock: &stock, IsActive: true},
	}}
	svc := newCatalogService(t, repo, nil)
	ctx := context.Background()

	ref, err := svc.ResolveForCart(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 5, *ref.Stock)

	// a checkout consumed the remaining stock
	stock = 0

	ref, err = svc.ResolveForCart(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 5, *ref.Stock, "cached copy still reports the old ceiling")

	svc.InvalidateProduct(ctx, "p1")

	ref, err = svc.ResolveForCart(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 0, *ref.Stock)
}

func TestResolveForCartMissingProduct(t *testing.T) {
	svc := newCatalogService(t, &memoryRepo{products: map[string]Product{}}, nil)
	_, err := svc.ResolveForCart(context.Background(), "ghost")
	require.Error(t, err)
}
