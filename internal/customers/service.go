package customers

import (
	"context"
	"fmt"
)

// Service wraps customer profile and address book rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertByPhone implements auth.CustomerUpserter.
func (s *Service) UpsertByPhone(ctx context.Context, phone string) (int64, error) {
	return s.repo.UpsertByPhone(ctx, phone)
}

// Get fetches a customer profile.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// UpdateProfile patches name and email; nil fields are left unchanged.
func (s *Service) UpdateProfile(ctx context.Context, id int64, name, email *string) (*Customer, error) {
	if err := s.repo.UpdateProfile(ctx, id, name, email); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Addresses lists a customer's address book.
func (s *Service) Addresses(ctx context.Context, customerID int64) ([]Address, error) {
	return s.repo.ListAddresses(ctx, customerID)
}

// Address fetches one address, scoped to its owner.
func (s *Service) Address(ctx context.Context, customerID, addressID int64) (*Address, error) {
	return s.repo.GetAddress(ctx, customerID, addressID)
}

// CreateAddress adds an address; marking it default demotes the previous one.
func (s *Service) CreateAddress(ctx context.Context, addr Address) (*Address, error) {
	if addr.IsDefault {
		if err := s.repo.ClearDefault(ctx, addr.CustomerID); err != nil {
			return nil, fmt.Errorf("clear default: %w", err)
		}
	}
	id, err := s.repo.CreateAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	return s.repo.GetAddress(ctx, addr.CustomerID, id)
}

// UpdateAddress rewrites an address, scoped to its owner.
func (s *Service) UpdateAddress(ctx context.Context, addr Address) (*Address, error) {
	if addr.IsDefault {
		if err := s.repo.ClearDefault(ctx, addr.CustomerID); err != nil {
			return nil, fmt.Errorf("clear default: %w", err)
		}
	}
	if err := s.repo.UpdateAddress(ctx, addr); err != nil {
		return nil, err
	}
	return s.repo.GetAddress(ctx, addr.CustomerID, addr.ID)
}

// DeleteAddress removes an address, scoped to its owner.
func (s *Service) DeleteAddress(ctx context.Context, customerID, addressID int64) error {
	return s.repo.DeleteAddress(ctx, customerID, addressID)
}
