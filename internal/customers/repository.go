package customers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates a missing customer or address.
var ErrNotFound = errors.New("record not found")

// Repository defines persistence operations for customers.
type Repository interface {
	UpsertByPhone(ctx context.Context, phone string) (int64, error)
	Get(ctx context.Context, id int64) (*Customer, error)
	UpdateProfile(ctx context.Context, id int64, name, email *string) error
	ListAddresses(ctx context.Context, customerID int64) ([]Address, error)
	GetAddress(ctx context.Context, customerID, addressID int64) (*Address, error)
	CreateAddress(ctx context.Context, addr Address) (int64, error)
	UpdateAddress(ctx context.Context, addr Address) error
	DeleteAddress(ctx context.Context, customerID, addressID int64) error
	ClearDefault(ctx context.Context, customerID int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) UpsertByPhone(ctx context.Context, phone string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (phone, created_at, updated_at) VALUES ($1, NOW(), NOW())
		 ON CONFLICT (phone) DO UPDATE SET updated_at = NOW()
		 RETURNING id`, phone,
	).Scan(&id)
	return id, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx,
		`SELECT id, phone, name, email, created_at, updated_at FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Phone, &c.Name, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id int64, name, email *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE customers SET name = COALESCE($2, name), email = COALESCE($3, email), updated_at = NOW() WHERE id = $1`,
		id, name, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const addressColumns = `id, customer_id, label, line1, line2, city, state, pincode, is_default, created_at`

func (r *repository) ListAddresses(ctx context.Context, customerID int64) ([]Address, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE customer_id = $1 ORDER BY is_default DESC, created_at DESC`,
		customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addresses []Address
	for rows.Next() {
		var a Address
		if err := rows.Scan(&a.ID, &a.CustomerID, &a.Label, &a.Line1, &a.Line2, &a.City, &a.State, &a.Pincode, &a.IsDefault, &a.CreatedAt); err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}

func (r *repository) GetAddress(ctx context.Context, customerID, addressID int64) (*Address, error) {
	var a Address
	err := r.pool.QueryRow(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND customer_id = $2`,
		addressID, customerID,
	).Scan(&a.ID, &a.CustomerID, &a.Label, &a.Line1, &a.Line2, &a.City, &a.State, &a.Pincode, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) CreateAddress(ctx context.Context, addr Address) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO addresses (customer_id, label, line1, line2, city, state, pincode, is_default, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id`,
		addr.CustomerID, addr.Label, addr.Line1, addr.Line2, addr.City, addr.State, addr.Pincode, addr.IsDefault,
	).Scan(&id)
	return id, err
}

func (r *repository) UpdateAddress(ctx context.Context, addr Address) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE addresses SET label = $3, line1 = $4, line2 = $5, city = $6, state = $7, pincode = $8, is_default = $9
		 WHERE id = $1 AND customer_id = $2`,
		addr.ID, addr.CustomerID, addr.Label, addr.Line1, addr.Line2, addr.City, addr.State, addr.Pincode, addr.IsDefault)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteAddress(ctx context.Context, customerID, addressID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM addresses WHERE id = $1 AND customer_id = $2`, addressID, customerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) ClearDefault(ctx context.Context, customerID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE customer_id = $1 AND is_default`, customerID)
	return err
}
