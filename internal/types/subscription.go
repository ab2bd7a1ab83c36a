package types

import (
	ierr "github.com/courselane/courselane/internal/errors"
)

// SubscriptionState is the billing lifecycle state of a subscription.
// State transitions are driven by the external billing collaborator;
// this engine only reads the current state.
type SubscriptionState string

const (
	SubscriptionStateTrialing SubscriptionState = "trialing"
	SubscriptionStateActive   SubscriptionState = "active"
	SubscriptionStatePastDue  SubscriptionState = "past_due"
	SubscriptionStateCanceled SubscriptionState = "canceled"
)

func (s SubscriptionState) Validate() error {
	switch s {
	case SubscriptionStateTrialing, SubscriptionStateActive, SubscriptionStatePastDue, SubscriptionStateCanceled:
		return nil
	default:
		return ierr.NewError("invalid subscription state").
			WithHint("Subscription state must be one of: trialing, active, past_due, canceled").
			WithReportableDetails(map[string]interface{}{
				"state": string(s),
			}).
			Mark(ierr.ErrValidation)
	}
}

// IsEntitled reports whether the state yields live content entitlement
func (s SubscriptionState) IsEntitled() bool {
	return s == SubscriptionStateTrialing || s == SubscriptionStateActive
}

// BillingPeriod is the cadence a plan is billed on
type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodYearly  BillingPeriod = "yearly"
)

func (p BillingPeriod) Validate() error {
	switch p {
	case BillingPeriodMonthly, BillingPeriodYearly:
		return nil
	default:
		return ierr.NewError("invalid billing period").
			WithHint("Billing period must be one of: monthly, yearly").
			Mark(ierr.ErrValidation)
	}
}
