package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/courselane/courselane/internal/api/dto"
	"github.com/courselane/courselane/internal/domain/catalog"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/testutil"
	"github.com/courselane/courselane/internal/types"
)

type ProgressServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ProgressService
	params  ServiceParams
}

func TestProgressService(t *testing.T) {
	suite.Run(t, new(ProgressServiceSuite))
}

func (s *ProgressServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		CatalogRepo:  s.GetStores().CatalogRepo,
		ProgressRepo: s.GetStores().ProgressRepo,
	}
	s.service = NewProgressService(s.params)
}

// courseWithChapters builds a single-module, single-lesson course with
// n chapters named chapter_1..chapter_n.
func courseWithChapters(n int) *catalog.Course {
	chapters := make([]*catalog.Chapter, 0, n)
	for i := 1; i <= n; i++ {
		chapters = append(chapters, &catalog.Chapter{
			ID:       fmt.Sprintf("chapter_%d", i),
			LessonID: "lesson_1",
			Title:    fmt.Sprintf("Chapter %d", i),
			Position: i,
		})
	}
	return &catalog.Course{
		ID:           "course_1",
		StorefrontID: "store_1",
		Title:        "Course Under Test",
		Modules: []*catalog.Module{
			{
				ID:       "cmod_1",
				CourseID: "course_1",
				Title:    "Module One",
				Position: 1,
				Lessons: []*catalog.Lesson{
					{
						ID:       "lesson_1",
						ModuleID: "cmod_1",
						Title:    "Lesson One",
						Position: 1,
						Chapters: chapters,
					},
				},
			},
		},
	}
}

func (s *ProgressServiceSuite) seedCourse(chapters int) {
	c := courseWithChapters(chapters)
	c.BaseModel = types.GetDefaultBaseModel(s.GetContext())
	_, err := s.GetStores().CatalogRepo.CreateCourse(s.GetContext(), c)
	s.Require().NoError(err)
}

func (s *ProgressServiceSuite) complete(chapterID string) {
	_, err := s.service.RecordChapterCompletion(s.GetContext(), dto.RecordChapterCompletionRequest{
		UserID:           "user_1",
		ChapterID:        chapterID,
		Completed:        true,
		TimeSpentSeconds: 60,
	})
	s.Require().NoError(err)
}

func (s *ProgressServiceSuite) TestRecordCompletionUnknownChapter() {
	s.seedCourse(3)
	_, err := s.service.RecordChapterCompletion(s.GetContext(), dto.RecordChapterCompletionRequest{
		UserID:    "user_1",
		ChapterID: "chapter_missing",
		Completed: true,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ProgressServiceSuite) TestCourseProgressRoundHalfUp() {
	s.seedCourse(8)
	s.complete("chapter_1")

	// 1/8 = 12.5, rounds up
	resp, err := s.service.CourseProgress(s.GetContext(), "user_1", "course_1")
	s.NoError(err)
	s.Equal(13, resp.Percent)
	s.Equal(1, resp.CompletedChapters)
	s.Equal(8, resp.TotalChapters)
}

func (s *ProgressServiceSuite) TestPercentRecountsAgainstLiveTree() {
	s.seedCourse(10)
	s.complete("chapter_1")
	s.complete("chapter_2")
	s.complete("chapter_3")
	s.complete("chapter_4")

	resp, err := s.service.CourseProgress(s.GetContext(), "user_1", "course_1")
	s.NoError(err)
	s.Equal(40, resp.Percent)

	// The course grows a chapter; the percentage drops on the next
	// read without any progress write.
	grown := courseWithChapters(11)
	s.GetStores().CatalogRepo.ReplaceCourse(s.GetContext(), grown)

	resp, err = s.service.CourseProgress(s.GetContext(), "user_1", "course_1")
	s.NoError(err)
	s.Equal(36, resp.Percent)
	s.Equal(4, resp.CompletedChapters)
	s.Equal(11, resp.TotalChapters)
}

func (s *ProgressServiceSuite) TestOrphanedFactsAreExcluded() {
	s.seedCourse(4)
	s.complete("chapter_1")
	s.complete("chapter_4")

	// chapter_4 is removed from the tree; its fact must not count
	shrunk := courseWithChapters(3)
	s.GetStores().CatalogRepo.ReplaceCourse(s.GetContext(), shrunk)

	resp, err := s.service.CourseProgress(s.GetContext(), "user_1", "course_1")
	s.NoError(err)
	s.Equal(1, resp.CompletedChapters)
	s.Equal(3, resp.TotalChapters)
	s.Equal(33, resp.Percent)
}

func (s *ProgressServiceSuite) TestEmptyCourseIsZeroPercent() {
	s.seedCourse(0)
	resp, err := s.service.CourseProgress(s.GetContext(), "user_1", "course_1")
	s.NoError(err)
	s.Equal(0, resp.Percent)
	s.Equal(0, resp.TotalChapters)
}

func (s *ProgressServiceSuite) TestUncompleteClearsTheFact() {
	s.seedCourse(2)
	s.complete("chapter_1")

	resp, err := s.service.CourseProgress(s.GetContext(), "user_1", "course_1")
	s.NoError(err)
	s.Equal(50, resp.Percent)

	// Deliberate un-complete
	fact, err := s.service.RecordChapterCompletion(s.GetContext(), dto.RecordChapterCompletionRequest{
		UserID:    "user_1",
		ChapterID: "chapter_1",
		Completed: false,
	})
	s.NoError(err)
	s.False(fact.IsCompleted)
	s.Nil(fact.CompletedAt)

	resp, err = s.service.CourseProgress(s.GetContext(), "user_1", "course_1")
	s.NoError(err)
	s.Equal(0, resp.Percent)
}

func (s *ProgressServiceSuite) TestModuleAndLessonProgress() {
	s.seedCourse(4)
	s.complete("chapter_1")
	s.complete("chapter_2")

	module, err := s.service.ModuleProgress(s.GetContext(), "user_1", "course_1", "cmod_1")
	s.NoError(err)
	s.Equal(50, module.Percent)

	lesson, err := s.service.LessonProgress(s.GetContext(), "user_1", "course_1", "lesson_1")
	s.NoError(err)
	s.Equal(50, lesson.Percent)

	_, err = s.service.ModuleProgress(s.GetContext(), "user_1", "course_1", "cmod_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ProgressServiceSuite) TestLastAccessedChapter() {
	s.seedCourse(3)
	s.complete("chapter_1")
	time.Sleep(5 * time.Millisecond)
	s.complete("chapter_3")

	resp, err := s.service.LastAccessedChapter(s.GetContext(), "user_1", "course_1")
	s.NoError(err)
	s.Equal("chapter_3", resp.ChapterID)

	_, err = s.service.LastAccessedChapter(s.GetContext(), "user_2", "course_1")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *ProgressServiceSuite) TestRecompletionKeepsFactID() {
	s.seedCourse(3)

	first, err := s.service.RecordChapterCompletion(s.GetContext(), dto.RecordChapterCompletionRequest{
		UserID:    "user_1",
		ChapterID: "chapter_1",
		Completed: true,
	})
	s.NoError(err)

	// Upsert on the same (user, chapter) keeps the stored row's id;
	// callers never see a fresh id minted for a discarded insert.
	second, err := s.service.RecordChapterCompletion(s.GetContext(), dto.RecordChapterCompletionRequest{
		UserID:           "user_1",
		ChapterID:        "chapter_1",
		Completed:        true,
		TimeSpentSeconds: 120,
	})
	s.NoError(err)
	s.Equal(first.Fact.ID, second.Fact.ID)
	s.Equal(120, second.Fact.TimeSpentSeconds)
}
