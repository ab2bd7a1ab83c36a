package enrollment

import (
	"context"
)

type Repository interface {
	// Upsert inserts the enrollment or returns the existing row for the
	// same (user, course) pair unchanged.
	Upsert(ctx context.Context, e *Enrollment) (*Enrollment, error)

	GetByUserAndCourse(ctx context.Context, userID, courseID string) (*Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]*Enrollment, error)
}
