package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courselane/courselane/internal/api/dto"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/service"
)

type ProgressHandler struct {
	progressService service.ProgressService
	log             *logger.Logger
}

func NewProgressHandler(progressService service.ProgressService, log *logger.Logger) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		log:             log,
	}
}

// RecordCompletion handles POST /progress/completions
func (h *ProgressHandler) RecordCompletion(c *gin.Context) {
	var req dto.RecordChapterCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.progressService.RecordChapterCompletion(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CourseProgress handles GET /progress/users/:user_id/courses/:course_id
func (h *ProgressHandler) CourseProgress(c *gin.Context) {
	resp, err := h.progressService.CourseProgress(c.Request.Context(), c.Param("user_id"), c.Param("course_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ModuleProgress handles GET /progress/users/:user_id/courses/:course_id/modules/:module_id
func (h *ProgressHandler) ModuleProgress(c *gin.Context) {
	resp, err := h.progressService.ModuleProgress(
		c.Request.Context(),
		c.Param("user_id"),
		c.Param("course_id"),
		c.Param("module_id"),
	)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LessonProgress handles GET /progress/users/:user_id/courses/:course_id/lessons/:lesson_id
func (h *ProgressHandler) LessonProgress(c *gin.Context) {
	resp, err := h.progressService.LessonProgress(
		c.Request.Context(),
		c.Param("user_id"),
		c.Param("course_id"),
		c.Param("lesson_id"),
	)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LastAccessed handles GET /progress/users/:user_id/courses/:course_id/last-accessed
func (h *ProgressHandler) LastAccessed(c *gin.Context) {
	resp, err := h.progressService.LastAccessedChapter(c.Request.Context(), c.Param("user_id"), c.Param("course_id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
