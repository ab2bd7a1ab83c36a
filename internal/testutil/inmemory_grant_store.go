package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/domain/grant"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// InMemoryGrantStore implements grant.Repository
type InMemoryGrantStore struct {
	*InMemoryStore[*grant.Grant]

	// createMu serializes the duplicate check with the insert, the way
	// the unique partial index does for the persistent repository.
	createMu sync.Mutex
}

func NewInMemoryGrantStore() *InMemoryGrantStore {
	return &InMemoryGrantStore{
		InMemoryStore: NewInMemoryStore[*grant.Grant](),
	}
}

func copyGrant(g *grant.Grant) *grant.Grant {
	if g == nil {
		return nil
	}
	copied := *g
	if g.LastAccessedAt != nil {
		copied.LastAccessedAt = lo.ToPtr(*g.LastAccessedAt)
	}
	return &copied
}

func (s *InMemoryGrantStore) Create(ctx context.Context, g *grant.Grant) (*grant.Grant, error) {
	if g == nil {
		return nil, ierr.NewError("grant cannot be nil").
			WithHint("Grant cannot be nil").
			Mark(ierr.ErrValidation)
	}

	s.createMu.Lock()
	defer s.createMu.Unlock()

	// Mirror the partial unique index on completed purchase grants
	if g.Route == types.GrantRoutePurchase && g.GrantStatus == types.GrantStatusCompleted {
		existing := s.InMemoryStore.List(ctx, func(other *grant.Grant) bool {
			return other.UserID == g.UserID &&
				other.Content.Equal(g.Content) &&
				other.Route == types.GrantRoutePurchase &&
				other.GrantStatus == types.GrantStatusCompleted
		}, nil)
		if len(existing) > 0 {
			return nil, ierr.NewError("grant already exists").
				WithHint("A completed purchase grant already covers this content").
				WithReportableDetails(map[string]interface{}{
					"user_id":    g.UserID,
					"content_id": g.Content.ID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	if err := s.InMemoryStore.Create(ctx, g.ID, copyGrant(g)); err != nil {
		return nil, err
	}
	return copyGrant(g), nil
}

func (s *InMemoryGrantStore) Get(ctx context.Context, id string) (*grant.Grant, error) {
	g, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("grant not found").
			WithHint("Grant not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyGrant(g), nil
}

func (s *InMemoryGrantStore) Update(ctx context.Context, g *grant.Grant) (*grant.Grant, error) {
	if g == nil {
		return nil, ierr.NewError("grant cannot be nil").
			WithHint("Grant cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, g.ID, copyGrant(g)); err != nil {
		return nil, err
	}
	return copyGrant(g), nil
}

func (s *InMemoryGrantStore) List(ctx context.Context, filter *grant.Filter) ([]*grant.Grant, error) {
	grants := s.InMemoryStore.List(ctx, func(g *grant.Grant) bool {
		if filter == nil {
			return true
		}
		if filter.UserID != "" && g.UserID != filter.UserID {
			return false
		}
		if filter.StorefrontID != "" && g.StorefrontID != filter.StorefrontID {
			return false
		}
		if filter.ContentID != "" && g.Content.ID != filter.ContentID {
			return false
		}
		if filter.ContentType != "" && g.Content.Type != filter.ContentType {
			return false
		}
		if len(filter.Routes) > 0 && !lo.Contains(filter.Routes, g.Route) {
			return false
		}
		if len(filter.GrantStatuses) > 0 && !lo.Contains(filter.GrantStatuses, g.GrantStatus) {
			return false
		}
		return true
	}, func(a, b *grant.Grant) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})

	offset := filter.GetOffset()
	limit := filter.GetLimit()
	if offset >= len(grants) {
		return []*grant.Grant{}, nil
	}
	grants = grants[offset:]
	if limit > 0 && limit < len(grants) {
		grants = grants[:limit]
	}
	return lo.Map(grants, func(g *grant.Grant, _ int) *grant.Grant { return copyGrant(g) }), nil
}

func (s *InMemoryGrantStore) FindCompletedByContent(ctx context.Context, userID string, content types.ContentRef, route types.GrantRoute) (*grant.Grant, error) {
	matches := s.InMemoryStore.List(ctx, func(g *grant.Grant) bool {
		if g.UserID != userID || !g.Content.Equal(content) {
			return false
		}
		if g.GrantStatus != types.GrantStatusCompleted {
			return false
		}
		return route == "" || g.Route == route
	}, func(a, b *grant.Grant) bool {
		// Oldest first, matching the persistent repository's ordering
		return a.CreatedAt.Before(b.CreatedAt)
	})
	if len(matches) == 0 {
		return nil, ierr.NewError("grant not found").
			WithHint("No completed grant covers this content").
			WithReportableDetails(map[string]interface{}{
				"user_id":    userID,
				"content_id": content.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyGrant(matches[0]), nil
}

func (s *InMemoryGrantStore) TouchAccess(ctx context.Context, id string) error {
	g, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return err
	}
	touched := copyGrant(g)
	touched.AccessCount++
	touched.LastAccessedAt = lo.ToPtr(time.Now().UTC())
	return s.InMemoryStore.Update(ctx, id, touched)
}
