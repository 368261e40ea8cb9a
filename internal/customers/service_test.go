package customers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memRepo struct {
	customers map[int64]*Customer
	addresses map[int64]*Address
	nextID    int64
}

func newMemRepo() *memRepo {
	return &memRepo{customers: map[int64]*Customer{}, addresses: map[int64]*Address{}}
}

func (r *memRepo) UpsertByPhone(_ context.Context, phone string) (int64, error) {
	for id, c := range r.customers {
		if c.Phone == phone {
			return id, nil
		}
	}
	r.nextID++
	r.customers[r.nextID] = &Customer{ID: r.nextID, Phone: phone, CreatedAt: time.Now()}
	return r.nextID, nil
}

func (r *memRepo) Get(_ context.Context, id int64) (*Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (r *memRepo) UpdateProfile(_ context.Context, id int64, name, email *string) error {
	c, ok := r.customers[id]
	if !ok {
		return ErrNotFound
	}
	if name != nil {
		c.Name = name
	}
	if email != nil {
		c.Email = email
	}
	return nil
}

func (r *memRepo) ListAddresses(_ context.Context, customerID int64) ([]Address, error) {
	var out []Address
	for _, a := range r.addresses {
		if a.CustomerID == customerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memRepo) GetAddress(_ context.Context, customerID, addressID int64) (*Address, error) {
	a, ok := r.addresses[addressID]
	if !ok || a.CustomerID != customerID {
		return nil, ErrNotFound
	}
	return a, nil
}

func (r *memRepo) CreateAddress(_ context.Context, addr Address) (int64, error) {
	r.nextID++
	addr.ID = r.nextID
	r.addresses[addr.ID] = &addr
	return addr.ID, nil
}

func (r *memRepo) UpdateAddress(_ context.Context, addr Address) error {
	existing, ok := r.addresses[addr.ID]
	if !ok || existing.CustomerID != addr.CustomerID {
		return ErrNotFound
	}
	r.addresses[addr.ID] = &addr
	return nil
}

func (r *memRepo) DeleteAddress(_ context.Context, customerID, addressID int64) error {
	a, ok := r.addresses[addressID]
	if !ok || a.CustomerID != customerID {
		return ErrNotFound
	}
	delete(r.addresses, addressID)
	return nil
}

func (r *memRepo) ClearDefault(_ context.Context, customerID int64) error {
	for _, a := range r.addresses {
		if a.CustomerID == customerID {
			a.IsDefault = false
		}
	}
	return nil
}

func TestUpsertByPhoneIsStable(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	first, err := svc.UpsertByPhone(ctx, "9876543210")
	require.NoError(t, err)
	second, err := svc.UpsertByPhone(ctx, "9876543210")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUpdateProfilePatchesOnlyProvidedFields(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.UpsertByPhone(ctx, "9876543210")
	require.NoError(t, err)

	name := "Asha"
	_, err = svc.UpdateProfile(ctx, id, &name, nil)
	require.NoError(t, err)

	email := "asha@example.com"
	got, err := svc.UpdateProfile(ctx, id, nil, &email)
	require.NoError(t, err)
	require.Equal(t, "Asha", *got.Name, "name untouched by the second patch")
	require.Equal(t, "asha@example.com", *got.Email)
}

func TestCreateDefaultAddressDemotesPrevious(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	id, err := svc.UpsertByPhone(ctx, "9876543210")
	require.NoError(t, err)

	first, err := svc.CreateAddress(ctx, Address{CustomerID: id, Label: "Home", Line1: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001", IsDefault: true})
	require.NoError(t, err)
	require.True(t, first.IsDefault)

	_, err = svc.CreateAddress(ctx, Address{CustomerID: id, Label: "Shop", Line1: "4 Market St", City: "Pune", State: "MH", Pincode: "411002", IsDefault: true})
	require.NoError(t, err)

	reloaded, err := svc.Address(ctx, id, first.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsDefault, "earlier default demoted")
}

func TestAddressOperationsScopedToOwner(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	owner, err := svc.UpsertByPhone(ctx, "9876543210")
	require.NoError(t, err)
	stranger, err := svc.UpsertByPhone(ctx, "9123456780")
	require.NoError(t, err)

	addr, err := svc.CreateAddress(ctx, Address{CustomerID: owner, Label: "Home", Line1: "12 MG Road", City: "Pune", State: "MH", Pincode: "411001"})
	require.NoError(t, err)

	_, err = svc.Address(ctx, stranger, addr.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.DeleteAddress(ctx, stranger, addr.ID), ErrNotFound)
	require.NoError(t, svc.DeleteAddress(ctx, owner, addr.ID))
}
