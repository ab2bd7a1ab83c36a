package grant

import (
	"context"

	"github.com/courselane/courselane/internal/types"
)

// Repository defines the persistence contract for the grant ledger.
//
// Create must enforce at most one completed purchase-route grant per
// (user, content) pair; a conflicting insert returns ErrAlreadyExists so
// the service can resolve the race by returning the winner's row.
type Repository interface {
	Create(ctx context.Context, g *Grant) (*Grant, error)
	Get(ctx context.Context, id string) (*Grant, error)
	Update(ctx context.Context, g *Grant) (*Grant, error)
	List(ctx context.Context, filter *Filter) ([]*Grant, error)

	// FindCompletedByContent returns the completed grant a user holds
	// directly on the given content via the given route, or ErrNotFound.
	FindCompletedByContent(ctx context.Context, userID string, content types.ContentRef, route types.GrantRoute) (*Grant, error)

	// TouchAccess bumps access_count and last_accessed_at. Best-effort
	// telemetry; callers swallow failures.
	TouchAccess(ctx context.Context, id string) error
}

// Filter defines query parameters for listing ledger grants
type Filter struct {
	QueryFilter *types.QueryFilter

	UserID       string
	StorefrontID string
	ContentID    string
	ContentType  types.ContentType
	Routes       []types.GrantRoute
	GrantStatuses []types.GrantStatus
}

func (f *Filter) GetLimit() int {
	if f == nil {
		return types.NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *Filter) GetOffset() int {
	if f == nil {
		return 0
	}
	return f.QueryFilter.GetOffset()
}

func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}
