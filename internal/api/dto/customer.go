package dto

import (
	"github.com/courselane/courselane/internal/domain/customer"
)

// CustomerResponse is the stable wire shape of one lifecycle record
type CustomerResponse struct {
	*customer.Customer
}

// ListCustomersResponse is the paginated customer list shape
type ListCustomersResponse struct {
	Items []*CustomerResponse `json:"items"`
	Total int                 `json:"total"`
}

func NewListCustomersResponse(customers []*customer.Customer) *ListCustomersResponse {
	items := make([]*CustomerResponse, len(customers))
	for i, c := range customers {
		items[i] = &CustomerResponse{Customer: c}
	}
	return &ListCustomersResponse{Items: items, Total: len(items)}
}
