package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"

	domainCustomer "github.com/courselane/courselane/internal/domain/customer"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/types"
)

type customerRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewCustomerRepository(client postgres.IClient, log *logger.Logger) domainCustomer.Repository {
	return &customerRepository{
		client: client,
		log:    log,
	}
}

func (r *customerRepository) Create(ctx context.Context, c *domainCustomer.Customer) (*domainCustomer.Customer, error) {
	if err := r.client.Writer(ctx).Create(c).Error; err != nil {
		if ierr.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ierr.WithError(err).
				WithHint("A customer already exists for this email and storefront").
				WithReportableDetails(map[string]interface{}{
					"email":         c.Email,
					"storefront_id": c.StorefrontID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to create customer").
			Mark(ierr.ErrDatabase)
	}
	return c, nil
}

func (r *customerRepository) Get(ctx context.Context, id string) (*domainCustomer.Customer, error) {
	var c domainCustomer.Customer
	err := r.client.Reader(ctx).
		Where("id = ? AND status != ?", id, types.StatusDeleted).
		First(&c).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("customer not found").
				WithHint("Customer not found").
				WithReportableDetails(map[string]interface{}{
					"customer_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *customerRepository) GetByEmailAndStorefront(ctx context.Context, email, storefrontID string) (*domainCustomer.Customer, error) {
	var c domainCustomer.Customer
	err := r.client.Reader(ctx).
		Where("email = ? AND storefront_id = ? AND status != ?", email, storefrontID, types.StatusDeleted).
		First(&c).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("customer not found").
				WithReportableDetails(map[string]interface{}{
					"email":         email,
					"storefront_id": storefrontID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get customer by email").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *customerRepository) Update(ctx context.Context, c *domainCustomer.Customer) (*domainCustomer.Customer, error) {
	c.UpdatedAt = time.Now().UTC()
	if err := r.client.Writer(ctx).Save(c).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update customer").
			WithReportableDetails(map[string]interface{}{
				"customer_id": c.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return c, nil
}

func (r *customerRepository) List(ctx context.Context, filter *domainCustomer.Filter) ([]*domainCustomer.Customer, error) {
	q := r.client.Reader(ctx).Model(&domainCustomer.Customer{}).
		Where("status != ?", types.StatusDeleted)

	if filter != nil {
		if filter.StorefrontID != "" {
			q = q.Where("storefront_id = ?", filter.StorefrontID)
		}
		if filter.Type != "" {
			q = q.Where("type = ?", filter.Type)
		}
	}

	var customers []*domainCustomer.Customer
	err := q.Order("created_at DESC").
		Limit(filter.GetLimit()).
		Offset(filter.GetOffset()).
		Find(&customers).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list customers").
			Mark(ierr.ErrDatabase)
	}
	return customers, nil
}
