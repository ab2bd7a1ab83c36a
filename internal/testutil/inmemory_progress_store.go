package testutil

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/domain/progress"
	ierr "github.com/courselane/courselane/internal/errors"
)

// InMemoryProgressStore implements progress.Repository. Facts are keyed
// by (user, chapter) to mirror the unique index.
type InMemoryProgressStore struct {
	*InMemoryStore[*progress.Fact]
}

func NewInMemoryProgressStore() *InMemoryProgressStore {
	return &InMemoryProgressStore{
		InMemoryStore: NewInMemoryStore[*progress.Fact](),
	}
}

func progressKey(userID, chapterID string) string {
	return fmt.Sprintf("%s:%s", userID, chapterID)
}

func copyFact(f *progress.Fact) *progress.Fact {
	if f == nil {
		return nil
	}
	copied := *f
	if f.CompletedAt != nil {
		copied.CompletedAt = lo.ToPtr(*f.CompletedAt)
	}
	return &copied
}

func (s *InMemoryProgressStore) Upsert(ctx context.Context, f *progress.Fact) (*progress.Fact, error) {
	if f == nil {
		return nil, ierr.NewError("progress fact cannot be nil").
			WithHint("Progress fact cannot be nil").
			Mark(ierr.ErrValidation)
	}
	key := progressKey(f.UserID, f.ChapterID)
	if existing, err := s.InMemoryStore.Get(ctx, key); err == nil {
		// Keep the original row identity across rewrites
		f.ID = existing.ID
		f.CreatedAt = existing.CreatedAt
	}
	s.InMemoryStore.Set(ctx, key, copyFact(f))
	return copyFact(f), nil
}

func (s *InMemoryProgressStore) Get(ctx context.Context, userID, chapterID string) (*progress.Fact, error) {
	f, err := s.InMemoryStore.Get(ctx, progressKey(userID, chapterID))
	if err != nil {
		return nil, ierr.NewError("progress fact not found").
			WithHint("No completion fact recorded for this chapter").
			WithReportableDetails(map[string]interface{}{
				"user_id":    userID,
				"chapter_id": chapterID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyFact(f), nil
}

func (s *InMemoryProgressStore) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]*progress.Fact, error) {
	facts := s.InMemoryStore.List(ctx, func(f *progress.Fact) bool {
		return f.UserID == userID && f.CourseID == courseID
	}, func(a, b *progress.Fact) bool {
		return a.ChapterID < b.ChapterID
	})
	return lo.Map(facts, func(f *progress.Fact, _ int) *progress.Fact { return copyFact(f) }), nil
}
