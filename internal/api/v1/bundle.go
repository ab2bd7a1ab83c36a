package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courselane/courselane/internal/api/dto"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/service"
)

type BundleHandler struct {
	bundleService service.BundleService
	log           *logger.Logger
}

func NewBundleHandler(bundleService service.BundleService, log *logger.Logger) *BundleHandler {
	return &BundleHandler{
		bundleService: bundleService,
		log:           log,
	}
}

func (h *BundleHandler) CreateBundle(c *gin.Context) {
	var req dto.CreateBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.bundleService.CreateBundle(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BundleHandler) GetBundle(c *gin.Context) {
	resp, err := h.bundleService.GetBundle(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
