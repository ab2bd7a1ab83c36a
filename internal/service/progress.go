package service

import (
	"context"
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/api/dto"
	domainProgress "github.com/courselane/courselane/internal/domain/progress"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// ProgressService maintains per-chapter completion facts and computes
// aggregate completion on demand. Aggregates are never stored: every
// call recounts against the course's current chapter set, so content
// edits can never leave a stale percentage behind.
type ProgressService interface {
	RecordChapterCompletion(ctx context.Context, req dto.RecordChapterCompletionRequest) (*dto.ProgressFactResponse, error)
	CourseProgress(ctx context.Context, userID, courseID string) (*dto.CourseProgressResponse, error)
	ModuleProgress(ctx context.Context, userID, courseID, moduleID string) (*dto.ModuleProgressResponse, error)
	LessonProgress(ctx context.Context, userID, courseID, lessonID string) (*dto.LessonProgressResponse, error)

	// LastAccessedChapter returns the chapter the user touched most
	// recently within the course, for resume-where-you-left-off UX.
	LastAccessedChapter(ctx context.Context, userID, courseID string) (*dto.ProgressFactResponse, error)
}

type progressService struct {
	ServiceParams
}

func NewProgressService(params ServiceParams) ProgressService {
	return &progressService{ServiceParams: params}
}

func (s *progressService) RecordChapterCompletion(ctx context.Context, req dto.RecordChapterCompletionRequest) (*dto.ProgressFactResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	chapter, err := s.CatalogRepo.GetChapter(ctx, req.ChapterID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	fact := &domainProgress.Fact{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PROGRESS),
		UserID:           req.UserID,
		ChapterID:        req.ChapterID,
		CourseID:         chapter.CourseID,
		IsCompleted:      req.Completed,
		TimeSpentSeconds: req.TimeSpentSeconds,
		LastAccessedAt:   now,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	if req.Completed {
		fact.CompletedAt = lo.ToPtr(now)
	}
	// Un-completing clears CompletedAt; the nil pointer carries that

	upserted, err := s.ProgressRepo.Upsert(ctx, fact)
	if err != nil {
		return nil, err
	}
	return &dto.ProgressFactResponse{Fact: upserted}, nil
}

func (s *progressService) CourseProgress(ctx context.Context, userID, courseID string) (*dto.CourseProgressResponse, error) {
	if userID == "" || courseID == "" {
		return nil, ierr.NewError("user id and course id are required").
			WithHint("Please provide a user ID and a course ID").
			Mark(ierr.ErrValidation)
	}

	course, err := s.CatalogRepo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	summary, err := s.summarize(ctx, userID, courseID, course.ChapterIDs())
	if err != nil {
		return nil, err
	}
	return &dto.CourseProgressResponse{CourseID: courseID, ProgressSummary: *summary}, nil
}

func (s *progressService) ModuleProgress(ctx context.Context, userID, courseID, moduleID string) (*dto.ModuleProgressResponse, error) {
	if userID == "" || courseID == "" || moduleID == "" {
		return nil, ierr.NewError("user id, course id and module id are required").
			WithHint("Please provide user, course and module IDs").
			Mark(ierr.ErrValidation)
	}

	course, err := s.CatalogRepo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	chapterIDs := course.ModuleChapterIDs(moduleID)
	if chapterIDs == nil {
		return nil, ierr.NewError("module not found in course").
			WithHint("The module is not part of this course").
			WithReportableDetails(map[string]interface{}{
				"course_id": courseID,
				"module_id": moduleID,
			}).
			Mark(ierr.ErrNotFound)
	}

	summary, err := s.summarize(ctx, userID, courseID, chapterIDs)
	if err != nil {
		return nil, err
	}
	return &dto.ModuleProgressResponse{CourseID: courseID, ModuleID: moduleID, ProgressSummary: *summary}, nil
}

func (s *progressService) LessonProgress(ctx context.Context, userID, courseID, lessonID string) (*dto.LessonProgressResponse, error) {
	if userID == "" || courseID == "" || lessonID == "" {
		return nil, ierr.NewError("user id, course id and lesson id are required").
			WithHint("Please provide user, course and lesson IDs").
			Mark(ierr.ErrValidation)
	}

	course, err := s.CatalogRepo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	chapterIDs := course.LessonChapterIDs(lessonID)
	if chapterIDs == nil {
		return nil, ierr.NewError("lesson not found in course").
			WithHint("The lesson is not part of this course").
			WithReportableDetails(map[string]interface{}{
				"course_id": courseID,
				"lesson_id": lessonID,
			}).
			Mark(ierr.ErrNotFound)
	}

	summary, err := s.summarize(ctx, userID, courseID, chapterIDs)
	if err != nil {
		return nil, err
	}
	return &dto.LessonProgressResponse{CourseID: courseID, LessonID: lessonID, ProgressSummary: *summary}, nil
}

func (s *progressService) LastAccessedChapter(ctx context.Context, userID, courseID string) (*dto.ProgressFactResponse, error) {
	if userID == "" || courseID == "" {
		return nil, ierr.NewError("user id and course id are required").
			WithHint("Please provide a user ID and a course ID").
			Mark(ierr.ErrValidation)
	}

	facts, err := s.ProgressRepo.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if len(facts) == 0 {
		return nil, ierr.NewError("no progress recorded for course").
			WithReportableDetails(map[string]interface{}{
				"user_id":   userID,
				"course_id": courseID,
			}).
			Mark(ierr.ErrNotFound)
	}

	latest := facts[0]
	for _, f := range facts[1:] {
		if f.LastAccessedAt.After(latest.LastAccessedAt) {
			latest = f
		}
	}
	return &dto.ProgressFactResponse{Fact: latest}, nil
}

// summarize recounts completion for one chapter-id scope. Facts whose
// chapter has left the course tree are integrity anomalies: logged and
// excluded, never fatal.
func (s *progressService) summarize(ctx context.Context, userID, courseID string, chapterIDs []string) (*dto.ProgressSummary, error) {
	total := len(chapterIDs)
	if total == 0 {
		return &dto.ProgressSummary{Percent: 0, CompletedChapters: 0, TotalChapters: 0}, nil
	}

	facts, err := s.ProgressRepo.ListByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	current := lo.SliceToMap(chapterIDs, func(id string) (string, struct{}) { return id, struct{}{} })
	completed := 0
	for _, f := range facts {
		if _, ok := current[f.ChapterID]; !ok {
			if f.IsCompleted {
				s.Logger.Warnw("progress fact references a chapter outside the current course tree",
					"user_id", userID,
					"course_id", courseID,
					"chapter_id", f.ChapterID,
				)
			}
			continue
		}
		if f.IsCompleted {
			completed++
		}
	}

	return &dto.ProgressSummary{
		Percent:           roundPercent(completed, total),
		CompletedChapters: completed,
		TotalChapters:     total,
	}, nil
}

// roundPercent is standard round-half-up on completed/total
func roundPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(completed)/float64(total)*100 + 0.5))
}
