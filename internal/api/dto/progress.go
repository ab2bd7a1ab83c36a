package dto

import (
	"github.com/courselane/courselane/internal/domain/progress"
	"github.com/courselane/courselane/internal/validator"
)

// RecordChapterCompletionRequest upserts one chapter completion fact.
// Completed=false after a completion is a deliberate un-complete.
type RecordChapterCompletionRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	ChapterID        string `json:"chapter_id" validate:"required"`
	Completed        bool   `json:"completed"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"gte=0"`
}

func (r *RecordChapterCompletionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ProgressFactResponse is the stable wire shape of one completion fact
type ProgressFactResponse struct {
	*progress.Fact
}

// ProgressSummary is the recomputed completion aggregate for a course
// subtree. Percent uses round-half-up and is 0 when the subtree has no
// chapters.
type ProgressSummary struct {
	Percent           int `json:"percent"`
	CompletedChapters int `json:"completed_chapters"`
	TotalChapters     int `json:"total_chapters"`
}

// CourseProgressResponse is the per-course aggregate
type CourseProgressResponse struct {
	CourseID string `json:"course_id"`
	ProgressSummary
}

// ModuleProgressResponse is the per-module aggregate
type ModuleProgressResponse struct {
	CourseID string `json:"course_id"`
	ModuleID string `json:"module_id"`
	ProgressSummary
}

// LessonProgressResponse is the per-lesson aggregate
type LessonProgressResponse struct {
	CourseID string `json:"course_id"`
	LessonID string `json:"lesson_id"`
	ProgressSummary
}
