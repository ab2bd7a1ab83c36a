package dto

import (
	"github.com/courselane/courselane/internal/domain/grant"
	"github.com/courselane/courselane/internal/types"
	"github.com/courselane/courselane/internal/validator"
)

// ResolveAccessRequest asks whether one user may access one piece of
// content. Identity and storefront scope are always explicit here --
// nothing is read from ambient session state.
type ResolveAccessRequest struct {
	UserID       string           `json:"user_id" validate:"required"`
	StorefrontID string           `json:"storefront_id" validate:"required"`
	Content      types.ContentRef `json:"content" validate:"required"`

	// AdminCapability must be asserted by the caller after it has
	// verified the caller's admin rights on the storefront. It is a
	// capability hand-off, never inferred by the engine.
	AdminCapability bool `json:"admin_capability,omitempty"`
}

func (r *ResolveAccessRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Content.Validate()
}

// AccessDecision is the resolver's answer: a yes/no plus the route that
// produced the grant, and the ledger row when one backs the decision.
type AccessDecision struct {
	HasAccess bool             `json:"has_access"`
	Route     types.GrantRoute `json:"route,omitempty"`
	Grant     *GrantResponse   `json:"grant,omitempty"`
}

func Denied() *AccessDecision {
	return &AccessDecision{HasAccess: false}
}

func GrantedVia(route types.GrantRoute, g *grant.Grant) *AccessDecision {
	d := &AccessDecision{HasAccess: true, Route: route}
	if g != nil {
		d.Grant = &GrantResponse{Grant: g}
	}
	return d
}
