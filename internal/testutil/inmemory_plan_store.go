package testutil

import (
	"context"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/domain/plan"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

func copyPlan(p *plan.Plan) *plan.Plan {
	if p == nil {
		return nil
	}
	copied := *p
	copied.CourseIDs = append([]string(nil), p.CourseIDs...)
	copied.ProductIDs = append([]string(nil), p.ProductIDs...)
	return &copied
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	if p == nil {
		return nil, ierr.NewError("plan cannot be nil").
			WithHint("Plan cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Create(ctx, p.ID, copyPlan(p)); err != nil {
		return nil, err
	}
	return copyPlan(p), nil
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("plan not found").
			WithHint("Plan not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyPlan(p), nil
}

func (s *InMemoryPlanStore) Update(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	if p == nil {
		return nil, ierr.NewError("plan cannot be nil").
			WithHint("Plan cannot be nil").
			Mark(ierr.ErrValidation)
	}
	if err := s.InMemoryStore.Update(ctx, p.ID, copyPlan(p)); err != nil {
		return nil, err
	}
	return copyPlan(p), nil
}

func (s *InMemoryPlanStore) ListByStorefront(ctx context.Context, storefrontID string) ([]*plan.Plan, error) {
	plans := s.InMemoryStore.List(ctx, func(p *plan.Plan) bool {
		return p.StorefrontID == storefrontID && p.Status != types.StatusDeleted
	}, func(a, b *plan.Plan) bool {
		return a.Tier < b.Tier
	})
	return lo.Map(plans, func(p *plan.Plan, _ int) *plan.Plan { return copyPlan(p) }), nil
}

func (s *InMemoryPlanStore) Archive(ctx context.Context, id string) error {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return ierr.NewError("plan not found").
			WithHint("Plan not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	archived := copyPlan(p)
	archived.Status = types.StatusArchived
	return s.InMemoryStore.Update(ctx, id, archived)
}
