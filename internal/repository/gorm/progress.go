package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainProgress "github.com/courselane/courselane/internal/domain/progress"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/types"
)

type progressRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewProgressRepository(client postgres.IClient, log *logger.Logger) domainProgress.Repository {
	return &progressRepository{
		client: client,
		log:    log,
	}
}

func (r *progressRepository) Upsert(ctx context.Context, f *domainProgress.Fact) (*domainProgress.Fact, error) {
	f.UpdatedAt = time.Now().UTC()

	// Last write wins on conflict; completion facts are user-reported,
	// not financial, so converging on the newest write is acceptable.
	err := r.client.Writer(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"is_completed", "completed_at", "time_spent_seconds",
				"last_accessed_at", "updated_at",
			}),
		}).
		Create(f).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to record chapter progress").
			WithReportableDetails(map[string]interface{}{
				"user_id":    f.UserID,
				"chapter_id": f.ChapterID,
			}).
			Mark(ierr.ErrDatabase)
	}

	// On conflict the stored row keeps its original id; read it back so
	// callers never see an id that was discarded by the upsert.
	return r.Get(ctx, f.UserID, f.ChapterID)
}

func (r *progressRepository) Get(ctx context.Context, userID, chapterID string) (*domainProgress.Fact, error) {
	var f domainProgress.Fact
	err := r.client.Reader(ctx).
		Where("user_id = ? AND chapter_id = ? AND status != ?", userID, chapterID, types.StatusDeleted).
		First(&f).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("progress fact not found").
				WithReportableDetails(map[string]interface{}{
					"user_id":    userID,
					"chapter_id": chapterID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get progress fact").
			Mark(ierr.ErrDatabase)
	}
	return &f, nil
}

func (r *progressRepository) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*domainProgress.Fact, error) {
	var facts []*domainProgress.Fact
	err := r.client.Reader(ctx).
		Where("user_id = ? AND course_id = ? AND status != ?", userID, courseID, types.StatusDeleted).
		Find(&facts).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list progress facts").
			WithReportableDetails(map[string]interface{}{
				"user_id":   userID,
				"course_id": courseID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return facts, nil
}
