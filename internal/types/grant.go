package types

import (
	ierr "github.com/courselane/courselane/internal/errors"
)

// GrantRoute identifies the mechanism through which access was granted
type GrantRoute string

const (
	GrantRoutePurchase      GrantRoute = "purchase"
	GrantRouteSubscription  GrantRoute = "subscription"
	GrantRouteBundle        GrantRoute = "bundle"
	GrantRouteAdminOverride GrantRoute = "admin_override"
)

func (r GrantRoute) Validate() error {
	switch r {
	case GrantRoutePurchase, GrantRouteSubscription, GrantRouteBundle, GrantRouteAdminOverride:
		return nil
	default:
		return ierr.NewError("invalid grant route").
			WithHint("Grant route must be one of: purchase, subscription, bundle, admin_override").
			WithReportableDetails(map[string]interface{}{
				"route": string(r),
			}).
			Mark(ierr.ErrValidation)
	}
}

// GrantStatus is the lifecycle status of a ledger grant
type GrantStatus string

const (
	GrantStatusPending   GrantStatus = "pending"
	GrantStatusCompleted GrantStatus = "completed"
	GrantStatusRefunded  GrantStatus = "refunded"
)

func (s GrantStatus) Validate() error {
	switch s {
	case GrantStatusPending, GrantStatusCompleted, GrantStatusRefunded:
		return nil
	default:
		return ierr.NewError("invalid grant status").
			WithHint("Grant status must be one of: pending, completed, refunded").
			Mark(ierr.ErrValidation)
	}
}
