package gorm

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainEnrollment "github.com/courselane/courselane/internal/domain/enrollment"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/types"
)

type enrollmentRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewEnrollmentRepository(client postgres.IClient, log *logger.Logger) domainEnrollment.Repository {
	return &enrollmentRepository{
		client: client,
		log:    log,
	}
}

func (r *enrollmentRepository) Upsert(ctx context.Context, e *domainEnrollment.Enrollment) (*domainEnrollment.Enrollment, error) {
	// The shadow record is idempotent per (user, course); replays of
	// the grant.recorded event leave the first row untouched.
	err := r.client.Writer(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(e).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to upsert enrollment").
			WithReportableDetails(map[string]interface{}{
				"user_id":   e.UserID,
				"course_id": e.CourseID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return r.GetByUserAndCourse(ctx, e.UserID, e.CourseID)
}

func (r *enrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*domainEnrollment.Enrollment, error) {
	var e domainEnrollment.Enrollment
	err := r.client.Reader(ctx).
		Where("user_id = ? AND course_id = ? AND status != ?", userID, courseID, types.StatusDeleted).
		First(&e).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("enrollment not found").
				WithReportableDetails(map[string]interface{}{
					"user_id":   userID,
					"course_id": courseID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get enrollment").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID string) ([]*domainEnrollment.Enrollment, error) {
	var enrollments []*domainEnrollment.Enrollment
	err := r.client.Reader(ctx).
		Where("user_id = ? AND status != ?", userID, types.StatusDeleted).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list enrollments").
			WithReportableDetails(map[string]interface{}{
				"user_id": userID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return enrollments, nil
}
