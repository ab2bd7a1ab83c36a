package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/courselane/courselane/internal/api/dto"
	domainCustomer "github.com/courselane/courselane/internal/domain/customer"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// CustomerService is the lifecycle tracker: it observes grant events
// and maintains the per-(email, storefront) classification and
// lifetime spend.
type CustomerService interface {
	// ApplyGrantEvent folds one grant into the lifecycle record,
	// creating the customer as a lead on first contact. The first
	// positive amount ratchets lead -> paying; nothing ever ratchets
	// back, and TotalSpent is lifetime gross.
	ApplyGrantEvent(ctx context.Context, ev types.GrantEvent) error

	// ApplyRefundEvent bumps activity bookkeeping. Deliberately does
	// NOT touch Type or TotalSpent.
	ApplyRefundEvent(ctx context.Context, ev types.GrantEvent) error

	GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error)
	GetCustomerByEmail(ctx context.Context, email, storefrontID string) (*dto.CustomerResponse, error)
	ListCustomers(ctx context.Context, filter *domainCustomer.Filter) (*dto.ListCustomersResponse, error)
}

type customerService struct {
	ServiceParams
}

func NewCustomerService(params ServiceParams) CustomerService {
	return &customerService{ServiceParams: params}
}

func (s *customerService) ApplyGrantEvent(ctx context.Context, ev types.GrantEvent) error {
	if ev.UserEmail == "" || ev.StorefrontID == "" {
		return ierr.NewError("grant event is missing customer identity").
			WithHint("Grant events must carry user email and storefront").
			WithReportableDetails(map[string]interface{}{
				"grant_id": ev.GrantID,
			}).
			Mark(ierr.ErrValidation)
	}

	c, err := s.CustomerRepo.GetByEmailAndStorefront(ctx, ev.UserEmail, ev.StorefrontID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return err
		}
		c, err = s.createLead(ctx, ev)
		if err != nil {
			// A concurrent consumer may have created the row first
			if !ierr.IsAlreadyExists(err) {
				return err
			}
			c, err = s.CustomerRepo.GetByEmailAndStorefront(ctx, ev.UserEmail, ev.StorefrontID)
			if err != nil {
				return err
			}
		}
	}

	c.RecordSpend(ev.Amount, ev.OccurredAt)
	if _, err := s.CustomerRepo.Update(ctx, c); err != nil {
		return err
	}

	if ev.Amount.IsPositive() {
		s.Logger.Infow("customer recorded paid grant",
			"customer_id", c.ID,
			"storefront_id", c.StorefrontID,
			"total_spent", c.TotalSpent.String(),
		)
	}
	return nil
}

func (s *customerService) ApplyRefundEvent(ctx context.Context, ev types.GrantEvent) error {
	c, err := s.CustomerRepo.GetByEmailAndStorefront(ctx, ev.UserEmail, ev.StorefrontID)
	if err != nil {
		return err
	}

	// One-way ratchet: a refund never demotes the customer or reduces
	// lifetime spend. Only activity moves.
	c.LastActivityAt = ev.OccurredAt
	_, err = s.CustomerRepo.Update(ctx, c)
	return err
}

func (s *customerService) createLead(ctx context.Context, ev types.GrantEvent) (*domainCustomer.Customer, error) {
	now := time.Now().UTC()
	return s.CustomerRepo.Create(ctx, &domainCustomer.Customer{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Email:          ev.UserEmail,
		StorefrontID:   ev.StorefrontID,
		UserID:         ev.UserID,
		Type:           types.CustomerTypeLead,
		TotalSpent:     decimal.Zero,
		LastActivityAt: now,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	})
}

func (s *customerService) GetCustomer(ctx context.Context, id string) (*dto.CustomerResponse, error) {
	if id == "" {
		return nil, ierr.NewError("customer id is required").
			WithHint("Please provide a valid customer ID").
			Mark(ierr.ErrValidation)
	}
	c, err := s.CustomerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerResponse{Customer: c}, nil
}

func (s *customerService) GetCustomerByEmail(ctx context.Context, email, storefrontID string) (*dto.CustomerResponse, error) {
	if email == "" || storefrontID == "" {
		return nil, ierr.NewError("email and storefront id are required").
			WithHint("Please provide an email and a storefront ID").
			Mark(ierr.ErrValidation)
	}
	c, err := s.CustomerRepo.GetByEmailAndStorefront(ctx, email, storefrontID)
	if err != nil {
		return nil, err
	}
	return &dto.CustomerResponse{Customer: c}, nil
}

func (s *customerService) ListCustomers(ctx context.Context, filter *domainCustomer.Filter) (*dto.ListCustomersResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	customers, err := s.CustomerRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewListCustomersResponse(customers), nil
}
