package types

import (
	ierr "github.com/courselane/courselane/internal/errors"
)

// CustomerType classifies a customer within one storefront.
// The transition lead -> paying happens exactly once, on the first
// grant with a non-zero amount, and is never reversed.
type CustomerType string

const (
	CustomerTypeLead   CustomerType = "lead"
	CustomerTypePaying CustomerType = "paying"
)

func (t CustomerType) Validate() error {
	switch t {
	case CustomerTypeLead, CustomerTypePaying:
		return nil
	default:
		return ierr.NewError("invalid customer type").
			WithHint("Customer type must be one of: lead, paying").
			Mark(ierr.ErrValidation)
	}
}
