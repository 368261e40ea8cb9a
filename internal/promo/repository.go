package promo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing promo record.
var ErrNotFound = errors.New("record not found")

// Repository defines persistence operations for promotions.
type Repository interface {
	ActiveDealByProduct(ctx context.Context, productID string) (*HotDeal, error)
	ListActiveDeals(ctx context.Context) ([]HotDeal, error)
	CreateDeal(ctx context.Context, deal HotDeal) (int64, error)
	DeactivateDeal(ctx context.Context, id int64) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	ListBanners(ctx context.Context) ([]Banner, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const dealColumns = `id, product_id, discount_type, discount_value, ends_at, position, is_active, created_at`

func (r *repository) ActiveDealByProduct(ctx context.Context, productID string) (*HotDeal, error) {
	var d HotDeal
	err := r.pool.QueryRow(ctx,
		`SELECT `+dealColumns+` FROM hot_deals WHERE product_id = $1 AND is_active ORDER BY created_at DESC LIMIT 1`,
		productID,
	).Scan(&d.ID, &d.ProductID, &d.DiscountType, &d.DiscountValue, &d.EndsAt, &d.Position, &d.IsActive, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListActiveDeals(ctx context.Context) ([]HotDeal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+dealColumns+` FROM hot_deals WHERE is_active ORDER BY position, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []HotDeal
	for rows.Next() {
		var d HotDeal
		if err := rows.Scan(&d.ID, &d.ProductID, &d.DiscountType, &d.DiscountValue, &d.EndsAt, &d.Position, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func (r *repository) CreateDeal(ctx context.Context, deal HotDeal) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO hot_deals (product_id, discount_type, discount_value, ends_at, position, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, TRUE, NOW()) RETURNING id`,
		deal.ProductID, deal.DiscountType, deal.DiscountValue, deal.EndsAt, deal.Position,
	).Scan(&id)
	return id, err
}

func (r *repository) DeactivateDeal(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE hot_deals SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE hot_deals SET is_active = FALSE WHERE is_active AND ends_at IS NOT NULL AND ends_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repository) ListBanners(ctx context.Context) ([]Banner, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, image_url, link_url, position FROM banners WHERE is_active ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var banners []Banner
	for rows.Next() {
		var b Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position); err != nil {
			return nil, err
		}
		banners = append(banners, b)
	}
	return banners, rows.Err()
}
