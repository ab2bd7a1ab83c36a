package bundle

import (
	"github.com/shopspring/decimal"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// Bundle is a named set of courses and products sold as one purchase.
// A completed grant on the bundle reference implies entitlement to every
// member, resolved live at access-check time.
type Bundle struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	StorefrontID string          `json:"storefront_id" gorm:"index"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(20,8)"`
	Currency     string          `json:"currency"`

	Members []*Member `json:"members,omitempty" gorm:"foreignKey:BundleID"`

	types.BaseModel
}

func (Bundle) TableName() string {
	return "bundles"
}

// Member is one course or product included in a bundle
type Member struct {
	ID       string           `json:"id" gorm:"primaryKey"`
	BundleID string           `json:"bundle_id" gorm:"index"`
	Content  types.ContentRef `json:"content" gorm:"embedded;embeddedPrefix:content_"`

	types.BaseModel
}

func (Member) TableName() string {
	return "bundle_members"
}

func (b *Bundle) Validate() error {
	if b.StorefrontID == "" {
		return ierr.NewError("storefront id is required").
			WithHint("Bundle must belong to a storefront").
			Mark(ierr.ErrValidation)
	}
	if b.Name == "" {
		return ierr.NewError("name is required").
			WithHint("Bundle name is required").
			Mark(ierr.ErrValidation)
	}
	for _, m := range b.Members {
		if err := m.Content.Validate(); err != nil {
			return err
		}
		if m.Content.Type == types.ContentTypeBundle {
			return ierr.NewError("bundles cannot contain bundles").
				WithHint("Bundle members must be courses or products").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// Contains reports whether the given content is a member of the bundle
func (b *Bundle) Contains(ref types.ContentRef) bool {
	for _, m := range b.Members {
		if m.Content.Equal(ref) {
			return true
		}
	}
	return false
}

// Ref returns the content reference under which grants on this bundle
// are recorded in the ledger
func (b *Bundle) Ref() types.ContentRef {
	return types.NewBundleRef(b.ID)
}
