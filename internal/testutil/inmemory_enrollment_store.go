package testutil

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/domain/enrollment"
	ierr "github.com/courselane/courselane/internal/errors"
)

// InMemoryEnrollmentStore implements enrollment.Repository. Rows are
// keyed by (user, course) to mirror the unique index; Upsert keeps the
// first row, matching the SQL DO NOTHING conflict clause.
type InMemoryEnrollmentStore struct {
	*InMemoryStore[*enrollment.Enrollment]
}

func NewInMemoryEnrollmentStore() *InMemoryEnrollmentStore {
	return &InMemoryEnrollmentStore{
		InMemoryStore: NewInMemoryStore[*enrollment.Enrollment](),
	}
}

func enrollmentKey(userID, courseID string) string {
	return fmt.Sprintf("%s:%s", userID, courseID)
}

func copyEnrollment(e *enrollment.Enrollment) *enrollment.Enrollment {
	if e == nil {
		return nil
	}
	copied := *e
	return &copied
}

func (s *InMemoryEnrollmentStore) Upsert(ctx context.Context, e *enrollment.Enrollment) (*enrollment.Enrollment, error) {
	if e == nil {
		return nil, ierr.NewError("enrollment cannot be nil").
			WithHint("Enrollment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	key := enrollmentKey(e.UserID, e.CourseID)
	if existing, err := s.InMemoryStore.Get(ctx, key); err == nil {
		return copyEnrollment(existing), nil
	}
	s.InMemoryStore.Set(ctx, key, copyEnrollment(e))
	return copyEnrollment(e), nil
}

func (s *InMemoryEnrollmentStore) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*enrollment.Enrollment, error) {
	e, err := s.InMemoryStore.Get(ctx, enrollmentKey(userID, courseID))
	if err != nil {
		return nil, ierr.NewError("enrollment not found").
			WithHint("User is not enrolled in this course").
			WithReportableDetails(map[string]interface{}{
				"user_id":   userID,
				"course_id": courseID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyEnrollment(e), nil
}

func (s *InMemoryEnrollmentStore) ListByUser(ctx context.Context, userID string) ([]*enrollment.Enrollment, error) {
	enrollments := s.InMemoryStore.List(ctx, func(e *enrollment.Enrollment) bool {
		return e.UserID == userID
	}, func(a, b *enrollment.Enrollment) bool {
		return a.EnrolledAt.Before(b.EnrolledAt)
	})
	return lo.Map(enrollments, func(e *enrollment.Enrollment, _ int) *enrollment.Enrollment {
		return copyEnrollment(e)
	}), nil
}
