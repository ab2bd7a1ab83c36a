package customer

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// Customer is the per-(email, storefront) lifecycle record maintained
// from grant events. Type ratchets lead -> paying exactly once, on the
// first grant with a positive amount, and never reverts -- not even
// when that grant is later refunded. TotalSpent is lifetime gross and
// is likewise never decremented.
type Customer struct {
	ID           string             `json:"id" gorm:"primaryKey"`
	Email        string             `json:"email" gorm:"uniqueIndex:idx_customers_email_storefront,priority:1"`
	StorefrontID string             `json:"storefront_id" gorm:"uniqueIndex:idx_customers_email_storefront,priority:2"`
	UserID       string             `json:"user_id,omitempty" gorm:"index"`
	Type         types.CustomerType `json:"type"`
	TotalSpent   decimal.Decimal    `json:"total_spent" gorm:"type:numeric(20,8)"`
	LastActivityAt time.Time        `json:"last_activity_at"`

	types.BaseModel
}

func (Customer) TableName() string {
	return "customers"
}

func (c *Customer) Validate() error {
	if c.Email == "" {
		return ierr.NewError("email is required").
			WithHint("Customer must have an email").
			Mark(ierr.ErrValidation)
	}
	if c.StorefrontID == "" {
		return ierr.NewError("storefront id is required").
			WithHint("Customer must belong to a storefront").
			Mark(ierr.ErrValidation)
	}
	return c.Type.Validate()
}

// RecordSpend applies one grant's amount to the lifecycle record.
// The lead -> paying transition fires on the first positive amount.
func (c *Customer) RecordSpend(amount decimal.Decimal, at time.Time) {
	if amount.IsPositive() {
		c.TotalSpent = c.TotalSpent.Add(amount)
		c.Type = types.CustomerTypePaying
	}
	c.LastActivityAt = at
	c.UpdatedAt = at
}
