package bundle

import (
	"context"

	"github.com/courselane/courselane/internal/types"
)

type Repository interface {
	Create(ctx context.Context, b *Bundle) (*Bundle, error)
	Get(ctx context.Context, id string) (*Bundle, error)

	// ListContainingContent returns every published bundle of the
	// storefront that includes the given content as a member. Used by
	// the resolver's bundle-membership step.
	ListContainingContent(ctx context.Context, storefrontID string, ref types.ContentRef) ([]*Bundle, error)
}
