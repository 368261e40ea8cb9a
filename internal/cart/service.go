package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/toybazaar/toybazaar/internal/pricing"
)

// ErrProductUnavailable indicates the referenced product cannot be resolved.
var ErrProductUnavailable = errors.New("product unavailable")

// ProductResolver resolves the product facts a mutation needs. Implemented by
// the catalog service.
type ProductResolver interface {
	ResolveForCart(ctx context.Context, productID string) (ProductRef, error)
}

// RuleProvider supplies the current shipping rule snapshot. Implementations
// return the zero-value rule while the backing fetch has not resolved; cart
// interaction is never gated on rule availability.
type RuleProvider interface {
	CurrentRule(ctx context.Context) pricing.ShippingRule
}

// View is the cart state returned to the caller after every read or mutation.
type View struct {
	Cart       Snapshot       `json:"cart"`
	Totals     pricing.Totals `json:"totals"`
	AtCapacity bool           `json:"atCapacity,omitempty"`
}

// Service coordinates cart mutations, totals and persistence.
type Service struct {
	store    *Store
	products ProductResolver
	rules    RuleProvider
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(store *Store, products ProductResolver, rules RuleProvider, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		products: products,
		rules:    rules,
		logger:   logger,
		now:      time.Now,
	}
}

// View loads the cart and computes totals against the current shipping rule.
func (s *Service) View(ctx context.Context, deviceKey string) (View, error) {
	return s.view(ctx, s.loadCart(ctx, deviceKey)), nil
}

// SetQuantity sets a line to exactly qty; qty <= 0 removes the line.
func (s *Service) SetQuantity(ctx context.Context, deviceKey, productID string, qty int) (View, error) {
	snap := s.loadCart(ctx, deviceKey)

	ref := ProductRef{ID: productID}
	if qty > 0 {
		var err error
		ref, err = s.products.ResolveForCart(ctx, productID)
		if err != nil {
			return View{}, fmt.Errorf("resolve product: %w", err)
		}
		if ref.Stock != nil && qty > *ref.Stock {
			return s.view(ctx, snap).atCapacity(), nil
		}
	}

	next := snap.SetLineQuantity(ref, qty, s.now())
	s.persist(ctx, deviceKey, next)
	return s.view(ctx, next), nil
}

// Increment raises a line by one packet, respecting the stock ceiling.
func (s *Service) Increment(ctx context.Context, deviceKey, productID string) (View, error) {
	snap := s.loadCart(ctx, deviceKey)
	ref, err := s.products.ResolveForCart(ctx, productID)
	if err != nil {
		return View{}, fmt.Errorf("resolve product: %w", err)
	}

	next, capped := snap.Increment(ref, s.now())
	if capped {
		return s.view(ctx, snap).atCapacity(), nil
	}
	s.persist(ctx, deviceKey, next)
	return s.view(ctx, next), nil
}

// Decrement lowers a line by one packet, removing it at the minimum.
func (s *Service) Decrement(ctx context.Context, deviceKey, productID string) (View, error) {
	snap := s.loadCart(ctx, deviceKey)
	ref, err := s.products.ResolveForCart(ctx, productID)
	if err != nil {
		return View{}, fmt.Errorf("resolve product: %w", err)
	}

	next := snap.Decrement(ref, s.now())
	s.persist(ctx, deviceKey, next)
	return s.view(ctx, next), nil
}

// Remove deletes a line outright.
func (s *Service) Remove(ctx context.Context, deviceKey, productID string) (View, error) {
	next := s.loadCart(ctx, deviceKey).Remove(productID, s.now())
	s.persist(ctx, deviceKey, next)
	return s.view(ctx, next), nil
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context, deviceKey string) (View, error) {
	next := Snapshot{}.Clear(s.now())
	s.persist(ctx, deviceKey, next)
	return s.view(ctx, next), nil
}

// Wishlist returns the saved-for-later items.
func (s *Service) Wishlist(ctx context.Context, deviceKey string) ([]WishlistItem, error) {
	return s.store.LoadWishlist(ctx, deviceKey)
}

// AddToWishlist saves a product; adding an existing product is a no-op.
func (s *Service) AddToWishlist(ctx context.Context, deviceKey, productID string) ([]WishlistItem, error) {
	items, err := s.store.LoadWishlist(ctx, deviceKey)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ProductID == productID {
			return items, nil
		}
	}
	items = append(items, WishlistItem{ProductID: productID, AddedAt: s.now()})
	if err := s.store.SaveWishlist(ctx, deviceKey, items); err != nil {
		s.logger.Warn("wishlist persist failed", slog.Any("error", err))
	}
	return items, nil
}

// RemoveFromWishlist drops a product from the wishlist.
func (s *Service) RemoveFromWishlist(ctx context.Context, deviceKey, productID string) ([]WishlistItem, error) {
	items, err := s.store.LoadWishlist(ctx, deviceKey)
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	if err := s.store.SaveWishlist(ctx, deviceKey, kept); err != nil {
		s.logger.Warn("wishlist persist failed", slog.Any("error", err))
	}
	return kept, nil
}

// loadCart reads the device snapshot, degrading to an empty cart when redis is
// unreachable. Shopping keeps working through an outage; mutations made during
// one start from scratch and are lost with the outage.
func (s *Service) loadCart(ctx context.Context, deviceKey string) Snapshot {
	snap, err := s.store.LoadCart(ctx, deviceKey)
	if err != nil {
		s.logger.Warn("cart load failed", slog.String("device", deviceKey), slog.Any("error", err))
		return Snapshot{}
	}
	return snap
}

// persist writes the snapshot as a fire-and-forget side effect. A failed write
// is logged and swallowed: the in-memory snapshot stays authoritative for the
// session, it just will not survive a reload.
func (s *Service) persist(ctx context.Context, deviceKey string, snap Snapshot) {
	if err := s.store.SaveCart(ctx, deviceKey, snap); err != nil {
		s.logger.Warn("cart persist failed", slog.String("device", deviceKey), slog.Any("error", err))
	}
}

func (s *Service) view(ctx context.Context, snap Snapshot) View {
	return View{Cart: snap, Totals: snap.Totals(s.rules.CurrentRule(ctx))}
}

func (v View) atCapacity() View {
	v.AtCapacity = true
	return v
}
