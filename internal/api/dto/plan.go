package dto

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/courselane/courselane/internal/domain/plan"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
	"github.com/courselane/courselane/internal/validator"
)

// CreatePlanRequest creates a storefront subscription plan. The access
// rule is either the all-content flags or the explicit id lists.
type CreatePlanRequest struct {
	StorefrontID string          `json:"storefront_id" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Tier         int             `json:"tier" validate:"gte=0"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	YearlyPrice  decimal.Decimal `json:"yearly_price"`
	Currency     string          `json:"currency"`
	AllCourses   bool            `json:"all_courses"`
	AllProducts  bool            `json:"all_products"`
	CourseIDs    []string        `json:"course_ids,omitempty"`
	ProductIDs   []string        `json:"product_ids,omitempty"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.AllCourses && len(r.CourseIDs) > 0 {
		return ierr.NewError("all_courses excludes an explicit course list").
			WithHint("Provide either all_courses or course_ids, not both").
			Mark(ierr.ErrValidation)
	}
	if r.AllProducts && len(r.ProductIDs) > 0 {
		return ierr.NewError("all_products excludes an explicit product list").
			WithHint("Provide either all_products or product_ids, not both").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	return &plan.Plan{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		StorefrontID: r.StorefrontID,
		Name:         r.Name,
		Tier:         r.Tier,
		MonthlyPrice: r.MonthlyPrice,
		YearlyPrice:  r.YearlyPrice,
		Currency:     r.Currency,
		AllCourses:   r.AllCourses,
		AllProducts:  r.AllProducts,
		CourseIDs:    r.CourseIDs,
		ProductIDs:   r.ProductIDs,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

// UpdatePlanRequest edits a plan's access rule. Narrowing the lists
// takes effect on the next resolver call; there is no grandfathering.
type UpdatePlanRequest struct {
	Name        *string  `json:"name,omitempty"`
	AllCourses  *bool    `json:"all_courses,omitempty"`
	AllProducts *bool    `json:"all_products,omitempty"`
	CourseIDs   []string `json:"course_ids,omitempty"`
	ProductIDs  []string `json:"product_ids,omitempty"`
}

func (r *UpdatePlanRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("name must not be empty").
			WithHint("Plan name must not be empty").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PlanResponse is the stable wire shape of one plan
type PlanResponse struct {
	*plan.Plan
}

// ListPlansResponse is the plan list shape
type ListPlansResponse struct {
	Items []*PlanResponse `json:"items"`
	Total int             `json:"total"`
}

func NewListPlansResponse(plans []*plan.Plan) *ListPlansResponse {
	items := make([]*PlanResponse, len(plans))
	for i, p := range plans {
		items[i] = &PlanResponse{Plan: p}
	}
	return &ListPlansResponse{Items: items, Total: len(items)}
}
