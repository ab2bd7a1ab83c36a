package subscription

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, s *Subscription) (*Subscription, error)
	Get(ctx context.Context, id string) (*Subscription, error)
	Update(ctx context.Context, s *Subscription) (*Subscription, error)

	// ListNonCanceledByUserAndStorefront returns the user's live
	// subscriptions on one storefront, newest first. The single
	// non-canceled-subscription rule is enforced by the resolver, not
	// here, so the result is a slice even though it should hold at most
	// one element.
	ListNonCanceledByUserAndStorefront(ctx context.Context, userID, storefrontID string) ([]*Subscription, error)
}
