package progress

import (
	"time"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// Fact is the atomic unit of learning completion, one row per
// (user, chapter), enforced unique. Aggregate completion is never
// stored; it is always recomputed from the facts of the course's
// current chapter set.
type Fact struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	UserID           string     `json:"user_id" gorm:"uniqueIndex:idx_progress_user_chapter,priority:1"`
	ChapterID        string     `json:"chapter_id" gorm:"uniqueIndex:idx_progress_user_chapter,priority:2"`
	CourseID         string     `json:"course_id" gorm:"index"`
	IsCompleted      bool       `json:"is_completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
	LastAccessedAt   time.Time  `json:"last_accessed_at"`

	types.BaseModel
}

func (Fact) TableName() string {
	return "progress_facts"
}

func (f *Fact) Validate() error {
	if f.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("Progress fact must reference a user").
			Mark(ierr.ErrValidation)
	}
	if f.ChapterID == "" {
		return ierr.NewError("chapter id is required").
			WithHint("Progress fact must reference a chapter").
			Mark(ierr.ErrValidation)
	}
	if f.TimeSpentSeconds < 0 {
		return ierr.NewError("time spent must not be negative").
			WithHint("Time spent must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	return nil
}
