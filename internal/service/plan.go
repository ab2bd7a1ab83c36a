package service

import (
	"context"

	"github.com/courselane/courselane/internal/api/dto"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// PlanService is the storefront-owner surface for subscription plans.
// Access-rule edits take effect on the next resolver call; there is no
// cache to invalidate and no grandfathering for narrowed lists.
type PlanService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context, storefrontID string) (*dto.ListPlansResponse, error)

	// ArchivePlan blocks new subscriptions and new subscription-route
	// grants. Grants already completed keep conferring access.
	ArchivePlan(ctx context.Context, id string) error
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{ServiceParams: params}
}

func (s *planService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToPlan(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	created, err := s.PlanRepo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	return &dto.PlanResponse{Plan: created}, nil
}

func (s *planService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	if id == "" {
		return nil, ierr.NewError("plan id is required").
			WithHint("Please provide a valid plan ID").
			Mark(ierr.ErrValidation)
	}
	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	if id == "" {
		return nil, ierr.NewError("plan id is required").
			WithHint("Please provide a valid plan ID").
			Mark(ierr.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.AllCourses != nil {
		p.AllCourses = *req.AllCourses
	}
	if req.AllProducts != nil {
		p.AllProducts = *req.AllProducts
	}
	if req.CourseIDs != nil {
		p.CourseIDs = req.CourseIDs
	}
	if req.ProductIDs != nil {
		p.ProductIDs = req.ProductIDs
	}
	p.UpdatedBy = types.GetUserID(ctx)

	updated, err := s.PlanRepo.Update(ctx, p)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("plan access rule updated",
		"plan_id", id,
		"all_courses", updated.AllCourses,
		"course_count", len(updated.CourseIDs),
	)
	return &dto.PlanResponse{Plan: updated}, nil
}

func (s *planService) ListPlans(ctx context.Context, storefrontID string) (*dto.ListPlansResponse, error) {
	if storefrontID == "" {
		return nil, ierr.NewError("storefront id is required").
			WithHint("Please provide a valid storefront ID").
			Mark(ierr.ErrValidation)
	}
	plans, err := s.PlanRepo.ListByStorefront(ctx, storefrontID)
	if err != nil {
		return nil, err
	}
	return dto.NewListPlansResponse(plans), nil
}

func (s *planService) ArchivePlan(ctx context.Context, id string) error {
	if id == "" {
		return ierr.NewError("plan id is required").
			WithHint("Please provide a valid plan ID").
			Mark(ierr.ErrValidation)
	}
	return s.PlanRepo.Archive(ctx, id)
}
