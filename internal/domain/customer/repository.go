package customer

import (
	"context"

	"github.com/courselane/courselane/internal/types"
)

type Repository interface {
	Create(ctx context.Context, c *Customer) (*Customer, error)
	Get(ctx context.Context, id string) (*Customer, error)
	GetByEmailAndStorefront(ctx context.Context, email, storefrontID string) (*Customer, error)
	Update(ctx context.Context, c *Customer) (*Customer, error)
	List(ctx context.Context, filter *Filter) ([]*Customer, error)
}

type Filter struct {
	QueryFilter *types.QueryFilter

	StorefrontID string
	Type         types.CustomerType
}

func (f *Filter) GetLimit() int {
	if f == nil {
		return types.NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *Filter) GetOffset() int {
	if f == nil {
		return 0
	}
	return f.QueryFilter.GetOffset()
}

func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	return f.QueryFilter.Validate()
}
