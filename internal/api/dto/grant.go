package dto

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/courselane/courselane/internal/domain/grant"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
	"github.com/courselane/courselane/internal/validator"
)

// RecordPurchaseGrantRequest is how the payment collaborator reports a
// successful purchase. Deliveries may repeat; the ledger treats the
// call as idempotent per (user, content).
type RecordPurchaseGrantRequest struct {
	UserID        string           `json:"user_id" validate:"required"`
	UserEmail     string           `json:"user_email" validate:"required,email"`
	StorefrontID  string           `json:"storefront_id" validate:"required"`
	Content       types.ContentRef `json:"content" validate:"required"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	ExternalTxnID string           `json:"external_txn_id"`
}

func (r *RecordPurchaseGrantRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.Content.Validate(); err != nil {
		return err
	}
	switch r.Content.Type {
	case types.ContentTypeCourse, types.ContentTypeProduct, types.ContentTypeBundle:
	default:
		return ierr.NewError("content type cannot be purchased").
			WithHint("Purchases may cover courses, products and bundles only").
			WithReportableDetails(map[string]interface{}{
				"content_type": string(r.Content.Type),
			}).
			Mark(ierr.ErrValidation)
	}
	if r.Amount.IsNegative() {
		return ierr.NewError("amount must not be negative").
			WithHint("Amount must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *RecordPurchaseGrantRequest) ToGrant(ctx context.Context) *grant.Grant {
	return &grant.Grant{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_GRANT),
		UserID:        r.UserID,
		UserEmail:     r.UserEmail,
		StorefrontID:  r.StorefrontID,
		Content:       r.Content,
		Route:         types.GrantRoutePurchase,
		GrantStatus:   types.GrantStatusCompleted,
		Amount:        r.Amount,
		Currency:      r.Currency,
		ExternalTxnID: r.ExternalTxnID,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// RecordSubscriptionGrantRequest appends a ledger row when a billing
// period starts. Bookkeeping only; the resolver derives subscription
// entitlement from live state, never from these rows.
type RecordSubscriptionGrantRequest struct {
	UserID         string          `json:"user_id" validate:"required"`
	UserEmail      string          `json:"user_email" validate:"required,email"`
	StorefrontID   string          `json:"storefront_id" validate:"required"`
	SubscriptionID string          `json:"subscription_id" validate:"required"`
	PlanID         string          `json:"plan_id" validate:"required"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
}

func (r *RecordSubscriptionGrantRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Amount.IsNegative() {
		return ierr.NewError("amount must not be negative").
			WithHint("Amount must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *RecordSubscriptionGrantRequest) ToGrant(ctx context.Context) *grant.Grant {
	return &grant.Grant{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_GRANT),
		UserID:        r.UserID,
		UserEmail:     r.UserEmail,
		StorefrontID:  r.StorefrontID,
		Content:       types.NewPlanRef(r.PlanID),
		Route:         types.GrantRouteSubscription,
		GrantStatus:   types.GrantStatusCompleted,
		Amount:        r.Amount,
		Currency:      r.Currency,
		ExternalTxnID: r.SubscriptionID,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// RecordAdminGrantRequest comps a user into content on behalf of the
// storefront owner. Always zero amount.
type RecordAdminGrantRequest struct {
	UserID       string           `json:"user_id" validate:"required"`
	UserEmail    string           `json:"user_email" validate:"required,email"`
	StorefrontID string           `json:"storefront_id" validate:"required"`
	Content      types.ContentRef `json:"content" validate:"required"`
}

func (r *RecordAdminGrantRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Content.Validate()
}

func (r *RecordAdminGrantRequest) ToGrant(ctx context.Context) *grant.Grant {
	return &grant.Grant{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_GRANT),
		UserID:       r.UserID,
		UserEmail:    r.UserEmail,
		StorefrontID: r.StorefrontID,
		Content:      r.Content,
		Route:        types.GrantRouteAdminOverride,
		GrantStatus:  types.GrantStatusCompleted,
		Amount:       decimal.Zero,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

// GrantResponse is the stable wire shape of one ledger grant
type GrantResponse struct {
	*grant.Grant
}

// ListGrantsResponse is the paginated grant list shape
type ListGrantsResponse struct {
	Items []*GrantResponse `json:"items"`
	Total int              `json:"total"`
}

func NewListGrantsResponse(grants []*grant.Grant) *ListGrantsResponse {
	items := make([]*GrantResponse, len(grants))
	for i, g := range grants {
		items[i] = &GrantResponse{Grant: g}
	}
	return &ListGrantsResponse{Items: items, Total: len(items)}
}
