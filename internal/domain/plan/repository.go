package plan

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, p *Plan) (*Plan, error)
	Get(ctx context.Context, id string) (*Plan, error)
	Update(ctx context.Context, p *Plan) (*Plan, error)
	ListByStorefront(ctx context.Context, storefrontID string) ([]*Plan, error)

	// Archive marks the plan unavailable for new subscriptions without
	// touching existing grants or subscriptions.
	Archive(ctx context.Context, id string) error
}
