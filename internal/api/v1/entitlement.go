package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courselane/courselane/internal/api/dto"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/service"
)

type EntitlementHandler struct {
	entitlementService service.EntitlementService
	log                *logger.Logger
}

func NewEntitlementHandler(entitlementService service.EntitlementService, log *logger.Logger) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
		log:                log,
	}
}

// Resolve handles POST /access/resolve. A denial is a 200 with
// has_access=false; 4xx is reserved for malformed requests and unknown
// content.
func (h *EntitlementHandler) Resolve(c *gin.Context) {
	var req dto.ResolveAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	decision, err := h.entitlementService.Resolve(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, decision)
}
