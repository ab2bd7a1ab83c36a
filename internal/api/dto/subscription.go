package dto

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/domain/subscription"
	"github.com/courselane/courselane/internal/types"
	"github.com/courselane/courselane/internal/validator"
)

// CreateSubscriptionRequest attaches a user to a plan. The engine
// enforces at most one non-canceled subscription per (user, storefront).
type CreateSubscriptionRequest struct {
	UserID        string              `json:"user_id" validate:"required"`
	StorefrontID  string              `json:"storefront_id" validate:"required"`
	PlanID        string              `json:"plan_id" validate:"required"`
	BillingPeriod types.BillingPeriod `json:"billing_period" validate:"required"`
	Trial         bool                `json:"trial"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillingPeriod.Validate()
}

func (r *CreateSubscriptionRequest) ToSubscription(ctx context.Context) *subscription.Subscription {
	state := types.SubscriptionStateActive
	if r.Trial {
		state = types.SubscriptionStateTrialing
	}
	now := time.Now().UTC()
	periodEnd := now.AddDate(0, 1, 0)
	if r.BillingPeriod == types.BillingPeriodYearly {
		periodEnd = now.AddDate(1, 0, 0)
	}
	return &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		UserID:             r.UserID,
		StorefrontID:       r.StorefrontID,
		PlanID:             r.PlanID,
		State:              state,
		BillingPeriod:      r.BillingPeriod,
		CurrentPeriodStart: lo.ToPtr(now),
		CurrentPeriodEnd:   lo.ToPtr(periodEnd),
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
}

// UpdateSubscriptionStateRequest is the billing collaborator's
// lifecycle notification. The engine stores the new state as-is.
type UpdateSubscriptionStateRequest struct {
	State types.SubscriptionState `json:"state" validate:"required"`
}

func (r *UpdateSubscriptionStateRequest) Validate() error {
	return r.State.Validate()
}

// SubscriptionResponse is the stable wire shape of one subscription
type SubscriptionResponse struct {
	*subscription.Subscription
}
