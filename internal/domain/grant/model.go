package grant

import (
	"time"

	"github.com/shopspring/decimal"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// Grant is one row of the access ledger: proof that a user may access a
// piece of content, and via which route. Grants are append-mostly; after
// creation only the status flip (completed -> refunded) and the access
// telemetry fields mutate.
type Grant struct {
	ID            string            `json:"id" gorm:"primaryKey"`
	UserID        string            `json:"user_id" gorm:"index:idx_grants_user_content,priority:1"`
	UserEmail     string            `json:"user_email"`
	StorefrontID  string            `json:"storefront_id" gorm:"index"`
	Content       types.ContentRef  `json:"content" gorm:"embedded;embeddedPrefix:content_"`
	Route         types.GrantRoute  `json:"route"`
	GrantStatus   types.GrantStatus `json:"grant_status"`
	Amount        decimal.Decimal   `json:"amount" gorm:"type:numeric(20,8)"`
	Currency      string            `json:"currency"`
	ExternalTxnID string            `json:"external_txn_id,omitempty"`

	// Access telemetry, best-effort only
	AccessCount    int        `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`

	types.BaseModel
}

func (Grant) TableName() string {
	return "grants"
}

func (g *Grant) Validate() error {
	if g.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("Grant must reference a user").
			Mark(ierr.ErrValidation)
	}
	if g.StorefrontID == "" {
		return ierr.NewError("storefront id is required").
			WithHint("Grant must reference a storefront").
			Mark(ierr.ErrValidation)
	}
	if err := g.Content.Validate(); err != nil {
		return err
	}
	if err := g.Route.Validate(); err != nil {
		return err
	}
	if err := g.GrantStatus.Validate(); err != nil {
		return err
	}
	if g.Amount.IsNegative() {
		return ierr.NewError("amount must not be negative").
			WithHint("Grant amount must be zero or positive").
			WithReportableDetails(map[string]interface{}{
				"amount": g.Amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsCompleted reports whether the grant currently confers access
func (g *Grant) IsCompleted() bool {
	return g.GrantStatus == types.GrantStatusCompleted
}

// IsPaid reports whether the grant carried money, which is what drives
// the customer lead -> paying transition
func (g *Grant) IsPaid() bool {
	return g.Amount.IsPositive()
}
