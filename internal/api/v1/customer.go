package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courselane/courselane/internal/domain/customer"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/service"
	"github.com/courselane/courselane/internal/types"
)

type CustomerHandler struct {
	customerService service.CustomerService
	log             *logger.Logger
}

func NewCustomerHandler(customerService service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
		log:             log,
	}
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	resp, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByEmail handles GET /customers/lookup?email=...&storefront_id=...
func (h *CustomerHandler) GetByEmail(c *gin.Context) {
	email := c.Query("email")
	storefrontID := c.Query("storefront_id")
	if email == "" || storefrontID == "" {
		c.Error(ierr.NewError("email and storefront_id are required").
			WithHint("Provide both email and storefront_id query parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.customerService.GetCustomerByEmail(c.Request.Context(), email, storefrontID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListCustomers handles GET /customers with query-string filters
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	filter := &customer.Filter{
		QueryFilter:  types.NewDefaultQueryFilter(),
		StorefrontID: c.Query("storefront_id"),
		Type:         types.CustomerType(c.Query("type")),
	}

	resp, err := h.customerService.ListCustomers(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
