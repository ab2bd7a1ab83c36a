package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courselane/courselane/internal/api/dto"
	"github.com/courselane/courselane/internal/domain/grant"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/service"
	"github.com/courselane/courselane/internal/types"
)

type GrantHandler struct {
	grantService service.GrantService
	log          *logger.Logger
}

func NewGrantHandler(grantService service.GrantService, log *logger.Logger) *GrantHandler {
	return &GrantHandler{
		grantService: grantService,
		log:          log,
	}
}

// RecordPurchase handles POST /grants/purchase. Replaying the same
// purchase returns the existing grant with 200 instead of 201.
func (h *GrantHandler) RecordPurchase(c *gin.Context) {
	var req dto.RecordPurchaseGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.grantService.RecordPurchaseGrant(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GrantHandler) RecordSubscription(c *gin.Context) {
	var req dto.RecordSubscriptionGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.grantService.RecordSubscriptionGrant(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *GrantHandler) RecordAdmin(c *gin.Context) {
	var req dto.RecordAdminGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.grantService.RecordAdminGrant(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordRefund handles POST /grants/:id/refund
func (h *GrantHandler) RecordRefund(c *gin.Context) {
	resp, err := h.grantService.RecordRefund(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GrantHandler) GetGrant(c *gin.Context) {
	resp, err := h.grantService.GetGrant(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListGrants handles GET /grants with query-string filters
func (h *GrantHandler) ListGrants(c *gin.Context) {
	filter := &grant.Filter{
		QueryFilter:  types.NewDefaultQueryFilter(),
		UserID:       c.Query("user_id"),
		StorefrontID: c.Query("storefront_id"),
		ContentID:    c.Query("content_id"),
		ContentType:  types.ContentType(c.Query("content_type")),
	}
	if route := c.Query("route"); route != "" {
		filter.Routes = []types.GrantRoute{types.GrantRoute(route)}
	}
	if status := c.Query("status"); status != "" {
		filter.GrantStatuses = []types.GrantStatus{types.GrantStatus(status)}
	}

	resp, err := h.grantService.ListGrants(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
