package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toybazaar/toybazaar/internal/cart"
	"github.com/toybazaar/toybazaar/internal/catalog"
	"github.com/toybazaar/toybazaar/internal/customers"
	"github.com/toybazaar/toybazaar/internal/pricing"
	"github.com/toybazaar/toybazaar/internal/shared"
)

// ErrProductUnavailable indicates a submitted line references a product that
// is missing or inactive.
var ErrProductUnavailable = errors.New("product unavailable")

// ErrPriceChanged indicates the client's unit price no longer matches the
// catalog; the buyer must review the cart before retrying.
var ErrPriceChanged = errors.New("price changed")

// ErrBelowMinimum indicates a line is under the product's minimum order quantity.
var ErrBelowMinimum = errors.New("below minimum order quantity")

// ErrTotalsMismatch indicates the client's totals disagree with the
// server-side recomputation.
var ErrTotalsMismatch = errors.New("totals mismatch")

// CatalogSource resolves products and their current selling price.
// Implemented by the catalog service.
type CatalogSource interface {
	Get(ctx context.Context, id string) (*catalog.Product, error)
	EffectivePrice(ctx context.Context, p *catalog.Product) pricing.Money
	InvalidateProduct(ctx context.Context, id string)
}

// AddressBook verifies the shipping address belongs to the buyer.
// Implemented by the customers service.
type AddressBook interface {
	Address(ctx context.Context, customerID, addressID int64) (*customers.Address, error)
}

// CartClearer empties the device cart after a successful checkout.
// Implemented by the cart service.
type CartClearer interface {
	Clear(ctx context.Context, deviceKey string) (cart.View, error)
}

// Enqueuer hands post-checkout work to the background worker.
type Enqueuer interface {
	EnqueueOrderConfirmation(ctx context.Context, orderNumber string) error
}

// Service owns checkout and the order lifecycle.
type Service struct {
	repo      Repository
	products  CatalogSource
	addresses AddressBook
	rules     cart.RuleProvider
	carts     CartClearer
	idem      *shared.IdempotencyStore
	enqueuer  Enqueuer
	logger    *slog.Logger
	now       func() time.Time
}

// NewService constructs a Service. carts, idem and enqueuer may be nil; the
// corresponding side effects are then skipped.
func NewService(repo Repository, products CatalogSource, addresses AddressBook, rules cart.RuleProvider, carts CartClearer, idem *shared.IdempotencyStore, enqueuer Enqueuer, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		products:  products,
		addresses: addresses,
		rules:     rules,
		carts:     carts,
		idem:      idem,
		enqueuer:  enqueuer,
		logger:    logger,
		now:       time.Now,
	}
}

// Place runs checkout: every line is re-resolved against the live catalog,
// minimums and prices are enforced, totals are recomputed server-side and
// compared against what the client displayed, then the order is persisted
// with stock decremented in one transaction.
func (s *Service) Place(ctx context.Context, customerID int64, deviceKey, idemKey string, req PlaceOrderRequest) (*Order, error) {
	if idemKey != "" {
		if err := s.idem.CheckAndInsert(ctx, idemKey, "orders"); err != nil {
			return nil, err
		}
	}

	order, err := s.place(ctx, customerID, req)
	if err != nil {
		if idemKey != "" {
			if derr := s.idem.Delete(ctx, idemKey); derr != nil {
				s.logger.Warn("idempotency key rollback failed", slog.String("key", idemKey), slog.Any("error", derr))
			}
		}
		return nil, err
	}

	// Post-checkout side effects are best-effort: the order stands even when
	// the cart wipe or the confirmation enqueue fails.
	if s.carts != nil && deviceKey != "" {
		if _, err := s.carts.Clear(ctx, deviceKey); err != nil {
			s.logger.Warn("cart clear after checkout failed", slog.String("device", deviceKey), slog.Any("error", err))
		}
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueOrderConfirmation(ctx, order.Number); err != nil {
			s.logger.Warn("confirmation enqueue failed", slog.String("order", order.Number), slog.Any("error", err))
		}
	}
	return order, nil
}

func (s *Service) place(ctx context.Context, customerID int64, req PlaceOrderRequest) (*Order, error) {
	addr, err := s.addresses.Address(ctx, customerID, req.AddressID)
	if err != nil {
		return nil, fmt.Errorf("resolve address: %w", err)
	}

	lines := make([]Line, 0, len(req.Lines))
	priced := make([]pricing.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		p, err := s.products.Get(ctx, l.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, l.ProductID)
		}
		if !p.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
		}

		price := s.products.EffectivePrice(ctx, p)
		if price != l.UnitPrice {
			return nil, fmt.Errorf("%w: %s is now %d", ErrPriceChanged, p.Name, price)
		}
		if min := pricing.MinimumOrderQuantity(price); l.Quantity < min {
			return nil, fmt.Errorf("%w: %s requires at least %d packets", ErrBelowMinimum, p.Name, min)
		}

		lines = append(lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  l.Quantity,
			UnitPrice: price,
			LineTotal: price * pricing.Money(l.Quantity),
		})
		priced = append(priced, pricing.Line{Qty: l.Quantity, UnitPrice: price})
	}

	totals := pricing.ComputeTotals(priced, s.rules.CurrentRule(ctx))
	if totals.Subtotal != req.Subtotal || totals.ShippingFee != req.ShippingFee || totals.GrandTotal != req.GrandTotal {
		return nil, fmt.Errorf("%w: server total %d, client total %d", ErrTotalsMismatch, totals.GrandTotal, req.GrandTotal)
	}

	order := &Order{
		Number:        s.generateNumber(),
		CustomerID:    customerID,
		AddressID:     addr.ID,
		Status:        StatusPlaced,
		PaymentMethod: req.PaymentMethod,
		Subtotal:      totals.Subtotal,
		ShippingFee:   totals.ShippingFee,
		GrandTotal:    totals.GrandTotal,
		Lines:         lines,
	}
	if err := s.repo.Place(ctx, order); err != nil {
		return nil, err
	}

	// The read cache still holds each product's pre-checkout stock; drop the
	// entries so carts stop resolving a ceiling this order just consumed.
	for _, l := range lines {
		s.products.InvalidateProduct(ctx, l.ProductID)
	}
	return order, nil
}

// Get returns one order for its owner, lines included.
func (s *Service) Get(ctx context.Context, customerID int64, number string) (*Order, error) {
	return s.repo.GetByNumber(ctx, customerID, number)
}

// List returns a customer's order history, newest first.
func (s *Service) List(ctx context.Context, customerID int64, page, perPage int) ([]Order, shared.Pagination, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}
	orders, total, err := s.repo.ListByCustomer(ctx, customerID, page, perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return orders, shared.NewPagination(page, perPage, total), nil
}

// transitions maps each status to the states it may move into.
var transitions = map[Status][]Status{
	StatusPlaced:  {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusShipped, StatusCancelled},
	StatusShipped: {StatusDelivered},
}

// UpdateStatus moves an order to the requested status, trying each legal
// predecessor in turn.
func (s *Service) UpdateStatus(ctx context.Context, number string, to Status) error {
	lastErr := fmt.Errorf("%w: no path to %s", ErrInvalidTransition, to)
	for from, allowed := range transitions {
		for _, t := range allowed {
			if t != to {
				continue
			}
			err := s.repo.UpdateStatus(ctx, number, from, to)
			if err == nil || errors.Is(err, ErrNotFound) {
				return err
			}
			lastErr = err
		}
	}
	return lastErr
}

// MarkPaid confirms payment on a placed order. Called from the payment
// webhook, so it is not scoped to a customer.
func (s *Service) MarkPaid(ctx context.Context, number string) error {
	return s.repo.UpdateStatus(ctx, number, StatusPlaced, StatusPaid)
}

// Cancel lets a buyer withdraw an order that has not been paid yet.
func (s *Service) Cancel(ctx context.Context, customerID int64, number string) error {
	if _, err := s.repo.GetByNumber(ctx, customerID, number); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, number, StatusPlaced, StatusCancelled)
}

func (s *Service) generateNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TB-%s-%s", s.now().Format("20060102"), suffix)
}
