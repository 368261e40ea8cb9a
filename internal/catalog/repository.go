package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing catalog record.
var ErrNotFound = errors.New("record not found")

// Repository defines persistence operations for the catalog.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, req ListRequest) ([]Product, int, error)
	ListCategories(ctx context.Context) ([]Category, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `p.id, p.slug, p.name, p.description, p.category_id, p.price, p.mrp,
       p.stock, p.image_url, p.sale_end_time, p.is_active, p.created_at, p.updated_at`

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = $1 AND p.is_active`, productColumns)
	return r.scanOne(ctx, query, id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.slug = $1 AND p.is_active`, productColumns)
	return r.scanOne(ctx, query, slug)
}

func (r *repository) scanOne(ctx context.Context, query string, arg any) (*Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.Slug, &p.Name, &p.Description, &p.CategoryID, &p.Price, &p.MRP,
		&p.Stock, &p.ImageURL, &p.SaleEndTime, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Product, int, error) {
	conditions := []string{"p.is_active"}
	var args []any
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.Category != "" {
		conditions = append(conditions, fmt.Sprintf("p.category_id = (SELECT id FROM categories WHERE slug = $%d)", argPos))
		args = append(args, req.Category)
		argPos++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products p %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}

	query := fmt.Sprintf(`SELECT %s FROM products p %s ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argPos, argPos+1)
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Slug, &p.Name, &p.Description, &p.CategoryID, &p.Price, &p.MRP,
			&p.Stock, &p.ImageURL, &p.SaleEndTime, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, slug, name, position FROM categories ORDER BY position, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Position); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
