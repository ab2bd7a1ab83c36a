package plan

import (
	"github.com/shopspring/decimal"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// Plan is a storefront subscription plan. Its access rule is either the
// all-content flags or explicit inclusion lists.
//
// Tier declares an ordering between a storefront's plans but access is
// NOT inherited across tiers: a higher-tier plan unlocks only what its
// own rule names. Intentional, matches the billing surface's behavior.
type Plan struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	StorefrontID string          `json:"storefront_id" gorm:"index"`
	Name         string          `json:"name"`
	Tier         int             `json:"tier"`
	MonthlyPrice decimal.Decimal `json:"monthly_price" gorm:"type:numeric(20,8)"`
	YearlyPrice  decimal.Decimal `json:"yearly_price" gorm:"type:numeric(20,8)"`
	Currency     string          `json:"currency"`

	AllCourses  bool     `json:"all_courses"`
	AllProducts bool     `json:"all_products"`
	CourseIDs   []string `json:"course_ids,omitempty" gorm:"serializer:json"`
	ProductIDs  []string `json:"product_ids,omitempty" gorm:"serializer:json"`

	types.BaseModel
}

func (Plan) TableName() string {
	return "plans"
}

func (p *Plan) Validate() error {
	if p.StorefrontID == "" {
		return ierr.NewError("storefront id is required").
			WithHint("Plan must belong to a storefront").
			Mark(ierr.ErrValidation)
	}
	if p.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Plan name is required").
			Mark(ierr.ErrValidation)
	}
	if p.Tier < 0 {
		return ierr.NewError("tier must not be negative").
			WithHint("Plan tier must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	if p.MonthlyPrice.IsNegative() || p.YearlyPrice.IsNegative() {
		return ierr.NewError("plan prices must not be negative").
			WithHint("Plan prices must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsAvailable reports whether new subscriptions may attach to the plan.
// Archiving a plan blocks new subscription-route access but never
// revokes grants already completed.
func (p *Plan) IsAvailable() bool {
	return p.Status == types.StatusPublished
}
