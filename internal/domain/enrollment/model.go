package enrollment

import (
	"time"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// Enrollment is the legacy-compatible shadow record the content
// consumption surface reads for course membership lists. It is created
// asynchronously when a course purchase grant lands and is idempotent
// per (user, course). The ledger, not this table, remains the source of
// truth for access decisions.
type Enrollment struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex:idx_enrollments_user_course,priority:1"`
	CourseID     string    `json:"course_id" gorm:"uniqueIndex:idx_enrollments_user_course,priority:2"`
	StorefrontID string    `json:"storefront_id" gorm:"index"`
	GrantID      string    `json:"grant_id"`
	EnrolledAt   time.Time `json:"enrolled_at"`

	types.BaseModel
}

func (Enrollment) TableName() string {
	return "enrollments"
}

func (e *Enrollment) Validate() error {
	if e.UserID == "" || e.CourseID == "" {
		return ierr.NewError("user id and course id are required").
			WithHint("Enrollment must reference a user and a course").
			Mark(ierr.ErrValidation)
	}
	return nil
}
