package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/domain/subscription"
	ierr "github.com/courselane/courselane/internal/errors"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	copied := *sub
	if sub.CurrentPeriodStart != nil {
		copied.CurrentPeriodStart = lo.ToPtr(*sub.CurrentPeriodStart)
	}
	if sub.CurrentPeriodEnd != nil {
		copied.CurrentPeriodEnd = lo.ToPtr(*sub.CurrentPeriodEnd)
	}
	if sub.CanceledAt != nil {
		copied.CanceledAt = lo.ToPtr(*sub.CanceledAt)
	}
	return &copied
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	if sub == nil {
		return nil, ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub)); err != nil {
		return nil, err
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, error) {
	if sub == nil {
		return nil, ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub)); err != nil {
		return nil, err
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) ListNonCanceledByUserAndStorefront(ctx context.Context, userID, storefrontID string) ([]*subscription.Subscription, error) {
	subs := s.InMemoryStore.List(ctx, func(sub *subscription.Subscription) bool {
		return sub.UserID == userID &&
			sub.StorefrontID == storefrontID &&
			!sub.IsCanceled()
	}, func(a, b *subscription.Subscription) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return lo.Map(subs, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}
