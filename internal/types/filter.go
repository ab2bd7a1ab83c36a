package types

import (
	"github.com/samber/lo"

	ierr "github.com/courselane/courselane/internal/errors"
)

const (
	filterDefaultLimit = 50
	filterMaxLimit     = 1000
)

// QueryFilter holds pagination parameters shared by list operations
type QueryFilter struct {
	Limit  *int    `json:"limit,omitempty" form:"limit"`
	Offset *int    `json:"offset,omitempty" form:"offset"`
	Status *Status `json:"status,omitempty" form:"status"`
}

// NewDefaultQueryFilter returns a filter with the standard page size
func NewDefaultQueryFilter() *QueryFilter {
	return &QueryFilter{
		Limit:  lo.ToPtr(filterDefaultLimit),
		Offset: lo.ToPtr(0),
	}
}

// NewNoLimitQueryFilter returns a filter that fetches everything
func NewNoLimitQueryFilter() *QueryFilter {
	return &QueryFilter{
		Offset: lo.ToPtr(0),
	}
}

func (f *QueryFilter) GetLimit() int {
	if f == nil || f.Limit == nil {
		return filterDefaultLimit
	}
	return *f.Limit
}

func (f *QueryFilter) GetOffset() int {
	if f == nil || f.Offset == nil {
		return 0
	}
	return *f.Offset
}

func (f *QueryFilter) GetStatus() Status {
	if f == nil || f.Status == nil {
		return ""
	}
	return *f.Status
}

func (f *QueryFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.Limit != nil && (*f.Limit < 0 || *f.Limit > filterMaxLimit) {
		return ierr.NewError("limit out of range").
			WithHint("Limit must be between 0 and 1000").
			WithReportableDetails(map[string]interface{}{
				"limit": *f.Limit,
			}).
			Mark(ierr.ErrValidation)
	}
	if f.Offset != nil && *f.Offset < 0 {
		return ierr.NewError("offset must not be negative").
			WithHint("Offset must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}
