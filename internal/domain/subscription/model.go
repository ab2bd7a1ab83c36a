package subscription

import (
	"time"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// Subscription ties one user to one plan. Lifecycle transitions come
// from the external billing collaborator; this engine only stores the
// current state and reads it at resolution time.
type Subscription struct {
	ID           string                  `json:"id" gorm:"primaryKey"`
	UserID       string                  `json:"user_id" gorm:"index:idx_subscriptions_user_storefront,priority:1"`
	StorefrontID string                  `json:"storefront_id" gorm:"index:idx_subscriptions_user_storefront,priority:2"`
	PlanID       string                  `json:"plan_id" gorm:"index"`
	State        types.SubscriptionState `json:"state"`
	BillingPeriod types.BillingPeriod    `json:"billing_period"`

	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CanceledAt         *time.Time `json:"canceled_at,omitempty"`

	types.BaseModel
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (s *Subscription) Validate() error {
	if s.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("Subscription must reference a user").
			Mark(ierr.ErrValidation)
	}
	if s.StorefrontID == "" {
		return ierr.NewError("storefront id is required").
			WithHint("Subscription must reference a storefront").
			Mark(ierr.ErrValidation)
	}
	if s.PlanID == "" {
		return ierr.NewError("plan id is required").
			WithHint("Subscription must reference a plan").
			Mark(ierr.ErrValidation)
	}
	if err := s.State.Validate(); err != nil {
		return err
	}
	return s.BillingPeriod.Validate()
}

// IsEntitled reports whether the subscription currently yields access
func (s *Subscription) IsEntitled() bool {
	return s.Status == types.StatusPublished && s.State.IsEntitled()
}

// IsCanceled reports whether the subscription has reached its terminal state
func (s *Subscription) IsCanceled() bool {
	return s.State == types.SubscriptionStateCanceled
}
