package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/api/dto"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// SubscriptionService manages subscription records. Lifecycle
// transitions arrive from the external billing collaborator; the
// engine never schedules them itself.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	UpdateSubscriptionState(ctx context.Context, id string, req dto.UpdateSubscriptionStateRequest) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !p.IsAvailable() {
		return nil, ierr.NewError("plan is not available for new subscriptions").
			WithHint("The plan has been archived").
			WithReportableDetails(map[string]interface{}{
				"plan_id": req.PlanID,
			}).
			Mark(ierr.ErrValidation)
	}
	if p.StorefrontID != req.StorefrontID {
		return nil, ierr.NewError("plan belongs to a different storefront").
			WithHint("Plan and subscription storefront must match").
			Mark(ierr.ErrValidation)
	}

	// At most one non-canceled subscription per (user, storefront)
	existing, err := s.SubscriptionRepo.ListNonCanceledByUserAndStorefront(ctx, req.UserID, req.StorefrontID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ierr.NewError("user already holds a subscription on this storefront").
			WithHint("Cancel the existing subscription before starting a new one").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": existing[0].ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	sub := req.ToSubscription(ctx)
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	created, err := s.SubscriptionRepo.Create(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription created",
		"subscription_id", created.ID,
		"user_id", created.UserID,
		"plan_id", created.PlanID,
		"state", created.State,
	)
	return &dto.SubscriptionResponse{Subscription: created}, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	if id == "" {
		return nil, ierr.NewError("subscription id is required").
			WithHint("Please provide a valid subscription ID").
			Mark(ierr.ErrValidation)
	}
	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) UpdateSubscriptionState(ctx context.Context, id string, req dto.UpdateSubscriptionStateRequest) (*dto.SubscriptionResponse, error) {
	if id == "" {
		return nil, ierr.NewError("subscription id is required").
			WithHint("Please provide a valid subscription ID").
			Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.IsCanceled() {
		return nil, ierr.NewError("subscription is already canceled").
			WithHint("Canceled is a terminal state").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": id,
			}).
			Mark(ierr.ErrValidation)
	}

	prev := sub.State
	sub.State = req.State
	sub.UpdatedBy = types.GetUserID(ctx)
	if req.State == types.SubscriptionStateCanceled {
		sub.CanceledAt = lo.ToPtr(time.Now().UTC())
	}

	updated, err := s.SubscriptionRepo.Update(ctx, sub)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription state updated",
		"subscription_id", id,
		"from", prev,
		"to", updated.State,
	)
	return &dto.SubscriptionResponse{Subscription: updated}, nil
}
