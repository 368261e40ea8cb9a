// Package shipping owns the flat-fee shipping rule and its free-shipping
// threshold. Consumers read a snapshot that defaults to zero (always free)
// until the backing fetch succeeds; cart interaction is never blocked on it.
package shipping

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toybazaar/toybazaar/internal/pricing"
)

// ErrNotConfigured indicates no shipping rule row exists yet.
var ErrNotConfigured = errors.New("shipping rule not configured")

// Repository defines persistence operations for shipping rules.
type Repository interface {
	GetActive(ctx context.Context) (pricing.ShippingRule, error)
	Upsert(ctx context.Context, rule pricing.ShippingRule) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) GetActive(ctx context.Context) (pricing.ShippingRule, error) {
	var rule pricing.ShippingRule
	err := r.pool.QueryRow(ctx,
		`SELECT shipping_charge, free_shipping_threshold FROM shipping_rules WHERE is_active ORDER BY updated_at DESC LIMIT 1`,
	).Scan(&rule.ShippingCharge, &rule.FreeShippingThreshold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.ShippingRule{}, ErrNotConfigured
		}
		return pricing.ShippingRule{}, err
	}
	return rule, nil
}

func (r *repository) Upsert(ctx context.Context, rule pricing.ShippingRule) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO shipping_rules (id, shipping_charge, free_shipping_threshold, is_active, updated_at)
		 VALUES (1, $1, $2, TRUE, NOW())
		 ON CONFLICT (id) DO UPDATE SET shipping_charge = $1, free_shipping_threshold = $2, updated_at = NOW()`,
		rule.ShippingCharge, rule.FreeShippingThreshold)
	return err
}
