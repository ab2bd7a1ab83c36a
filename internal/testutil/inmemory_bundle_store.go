package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/domain/bundle"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// InMemoryBundleStore implements bundle.Repository
type InMemoryBundleStore struct {
	*InMemoryStore[*bundle.Bundle]
}

func NewInMemoryBundleStore() *InMemoryBundleStore {
	return &InMemoryBundleStore{
		InMemoryStore: NewInMemoryStore[*bundle.Bundle](),
	}
}

func copyBundle(b *bundle.Bundle) *bundle.Bundle {
	if b == nil {
		return nil
	}
	copied := *b
	copied.Members = lo.Map(b.Members, func(m *bundle.Member, _ int) *bundle.Member {
		mc := *m
		return &mc
	})
	return &copied
}

func (s *InMemoryBundleStore) Create(ctx context.Context, b *bundle.Bundle) (*bundle.Bundle, error) {
	if b == nil {
		return nil, ierr.NewError("bundle cannot be nil").
			WithHint("Bundle cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, b.ID, copyBundle(b)); err != nil {
		return nil, err
	}
	return copyBundle(b), nil
}

func (s *InMemoryBundleStore) Get(ctx context.Context, id string) (*bundle.Bundle, error) {
	b, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("bundle not found").
			WithHint("Bundle not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyBundle(b), nil
}

func (s *InMemoryBundleStore) ListContainingContent(ctx context.Context, storefrontID string, ref types.ContentRef) ([]*bundle.Bundle, error) {
	bundles := s.InMemoryStore.List(ctx, func(b *bundle.Bundle) bool {
		return b.StorefrontID == storefrontID &&
			b.Status == types.StatusPublished &&
			b.Contains(ref)
	}, func(a, b *bundle.Bundle) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return lo.Map(bundles, func(b *bundle.Bundle, _ int) *bundle.Bundle { return copyBundle(b) }), nil
}
