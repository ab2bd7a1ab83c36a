package dto

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/courselane/courselane/internal/domain/bundle"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
	"github.com/courselane/courselane/internal/validator"
)

// CreateBundleRequest creates a named member set sold as one purchase
type CreateBundleRequest struct {
	StorefrontID string             `json:"storefront_id" validate:"required"`
	Name         string             `json:"name" validate:"required"`
	Price        decimal.Decimal    `json:"price"`
	Currency     string             `json:"currency"`
	Members      []types.ContentRef `json:"members" validate:"required,min=1"`
}

func (r *CreateBundleRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	for _, m := range r.Members {
		if err := m.Validate(); err != nil {
			return err
		}
		switch m.Type {
		case types.ContentTypeCourse, types.ContentTypeProduct:
		default:
			return ierr.NewError("bundle members must be courses or products").
				WithReportableDetails(map[string]interface{}{
					"content_type": string(m.Type),
				}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

func (r *CreateBundleRequest) ToBundle(ctx context.Context) *bundle.Bundle {
	b := &bundle.Bundle{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUNDLE),
		StorefrontID: r.StorefrontID,
		Name:         r.Name,
		Price:        r.Price,
		Currency:     r.Currency,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
	for _, m := range r.Members {
		b.Members = append(b.Members, &bundle.Member{
			ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUNDLE),
			BundleID:  b.ID,
			Content:   m,
			BaseModel: types.GetDefaultBaseModel(ctx),
		})
	}
	return b
}

// BundleResponse is the stable wire shape of one bundle
type BundleResponse struct {
	*bundle.Bundle
}
