package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/toybazaar/toybazaar/internal/platform/db"
)

// ErrNotFound indicates a missing order.
var ErrNotFound = errors.New("order not found")

// ErrInsufficientStock indicates a line could not be covered by remaining stock.
var ErrInsufficientStock = errors.New("insufficient stock")

// ErrInvalidTransition indicates a status change the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// Repository defines persistence operations for orders.
type Repository interface {
	// Place persists the order with its lines and decrements product stock,
	// all in one transaction. Returns ErrInsufficientStock when any line
	// cannot be covered.
	Place(ctx context.Context, o *Order) error
	GetByNumber(ctx context.Context, customerID int64, number string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID int64, page, perPage int) ([]Order, int, error)
	// UpdateStatus moves an order from one status to another; the change is
	// applied only when the order is currently in the expected status.
	UpdateStatus(ctx context.Context, number string, from, to Status) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `id, number, customer_id, address_id, status, payment_method, subtotal, shipping_fee, grand_total, placed_at, updated_at`

func (r *repository) Place(ctx context.Context, o *Order) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO orders (number, customer_id, address_id, status, payment_method, subtotal, shipping_fee, grand_total, placed_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			 RETURNING id, placed_at, updated_at`,
			o.Number, o.CustomerID, o.AddressID, o.Status, o.PaymentMethod, o.Subtotal, o.ShippingFee, o.GrandTotal,
		).Scan(&o.ID, &o.PlacedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range o.Lines {
			line := &o.Lines[i]
			line.OrderID = o.ID
			err := tx.QueryRow(ctx,
				`INSERT INTO order_lines (order_id, product_id, name, quantity, unit_price, line_total)
				 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
				line.OrderID, line.ProductID, line.Name, line.Quantity, line.UnitPrice, line.LineTotal,
			).Scan(&line.ID)
			if err != nil {
				return fmt.Errorf("insert order line: %w", err)
			}

			// A NULL stock means the product is not stock-tracked.
			tag, err := tx.Exec(ctx,
				`UPDATE products SET stock = stock - $2, updated_at = NOW()
				 WHERE id = $1 AND (stock IS NULL OR stock >= $2)`,
				line.ProductID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: product %s", ErrInsufficientStock, line.ProductID)
			}
		}
		return nil
	})
}

func (r *repository) GetByNumber(ctx context.Context, customerID int64, number string) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE number = $1 AND customer_id = $2`,
		number, customerID,
	).Scan(&o.ID, &o.Number, &o.CustomerID, &o.AddressID, &o.Status, &o.PaymentMethod,
		&o.Subtotal, &o.ShippingFee, &o.GrandTotal, &o.PlacedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, name, quantity, unit_price, line_total
		 FROM order_lines WHERE order_id = $1 ORDER BY id`, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Name, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64, page, perPage int) ([]Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE customer_id = $1
		 ORDER BY placed_at DESC LIMIT $2 OFFSET $3`,
		customerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Number, &o.CustomerID, &o.AddressID, &o.Status, &o.PaymentMethod,
			&o.Subtotal, &o.ShippingFee, &o.GrandTotal, &o.PlacedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, number string, from, to Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE number = $1 AND status = $2`,
		number, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing order from one in the wrong state.
		var current Status
		err := r.pool.QueryRow(ctx, `SELECT status FROM orders WHERE number = $1`, number).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s -> %s (currently %s)", ErrInvalidTransition, from, to, current)
	}
	return nil
}
