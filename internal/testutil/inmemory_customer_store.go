package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/domain/customer"
	ierr "github.com/courselane/courselane/internal/errors"
)

// InMemoryCustomerStore implements customer.Repository
type InMemoryCustomerStore struct {
	*InMemoryStore[*customer.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{
		InMemoryStore: NewInMemoryStore[*customer.Customer](),
	}
}

func copyCustomer(c *customer.Customer) *customer.Customer {
	if c == nil {
		return nil
	}
	copied := *c
	return &copied
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	if c == nil {
		return nil, ierr.NewError("customer cannot be nil").
			WithHint("Customer cannot be nil").
			Mark(ierr.ErrValidation)
	}

	// Mirror the unique index on (email, storefront)
	existing := s.InMemoryStore.List(ctx, func(other *customer.Customer) bool {
		return other.Email == c.Email && other.StorefrontID == c.StorefrontID
	}, nil)
	if len(existing) > 0 {
		return nil, ierr.NewError("customer already exists").
			WithHint("A customer record already exists for this email and storefront").
			WithReportableDetails(map[string]interface{}{
				"email":         c.Email,
				"storefront_id": c.StorefrontID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	if err := s.InMemoryStore.Create(ctx, c.ID, copyCustomer(c)); err != nil {
		return nil, err
	}
	return copyCustomer(c), nil
}

func (s *InMemoryCustomerStore) Get(ctx context.Context, id string) (*customer.Customer, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("customer not found").
			WithHint("Customer not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyCustomer(c), nil
}

func (s *InMemoryCustomerStore) GetByEmailAndStorefront(ctx context.Context, email, storefrontID string) (*customer.Customer, error) {
	matches := s.InMemoryStore.List(ctx, func(c *customer.Customer) bool {
		return c.Email == email && c.StorefrontID == storefrontID
	}, nil)
	if len(matches) == 0 {
		return nil, ierr.NewError("customer not found").
			WithHint("No customer record for this email and storefront").
			WithReportableDetails(map[string]interface{}{
				"email":         email,
				"storefront_id": storefrontID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyCustomer(matches[0]), nil
}

func (s *InMemoryCustomerStore) Update(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	if c == nil {
		return nil, ierr.NewError("customer cannot be nil").
			WithHint("Customer cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, c.ID, copyCustomer(c)); err != nil {
		return nil, err
	}
	return copyCustomer(c), nil
}

func (s *InMemoryCustomerStore) List(ctx context.Context, filter *customer.Filter) ([]*customer.Customer, error) {
	customers := s.InMemoryStore.List(ctx, func(c *customer.Customer) bool {
		if filter == nil {
			return true
		}
		if filter.StorefrontID != "" && c.StorefrontID != filter.StorefrontID {
			return false
		}
		if filter.Type != "" && c.Type != filter.Type {
			return false
		}
		return true
	}, func(a, b *customer.Customer) bool {
		return a.LastActivityAt.After(b.LastActivityAt)
	})

	offset := filter.GetOffset()
	limit := filter.GetLimit()
	if offset >= len(customers) {
		return []*customer.Customer{}, nil
	}
	customers = customers[offset:]
	if limit > 0 && limit < len(customers) {
		customers = customers[:limit]
	}
	return lo.Map(customers, func(c *customer.Customer, _ int) *customer.Customer { return copyCustomer(c) }), nil
}
