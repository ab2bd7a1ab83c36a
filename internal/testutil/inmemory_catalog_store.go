package testutil

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/courselane/courselane/internal/domain/catalog"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// InMemoryCatalogStore implements catalog.Repository. Chapters are
// indexed separately so chapter lookups work without a course id, the
// same shape the SQL implementation gets from the chapters table.
type InMemoryCatalogStore struct {
	courses  *InMemoryStore[*catalog.Course]
	chapters *InMemoryStore[*catalog.Chapter]
	products *InMemoryStore[*catalog.DigitalProduct]
}

func NewInMemoryCatalogStore() *InMemoryCatalogStore {
	return &InMemoryCatalogStore{
		courses:  NewInMemoryStore[*catalog.Course](),
		chapters: NewInMemoryStore[*catalog.Chapter](),
		products: NewInMemoryStore[*catalog.DigitalProduct](),
	}
}

func copyCourse(c *catalog.Course) *catalog.Course {
	if c == nil {
		return nil
	}
	copied := *c
	copied.Modules = make([]*catalog.Module, 0, len(c.Modules))
	for _, m := range c.Modules {
		mc := *m
		mc.Lessons = make([]*catalog.Lesson, 0, len(m.Lessons))
		for _, l := range m.Lessons {
			lc := *l
			lc.Chapters = make([]*catalog.Chapter, 0, len(l.Chapters))
			for _, ch := range l.Chapters {
				chc := *ch
				lc.Chapters = append(lc.Chapters, &chc)
			}
			mc.Lessons = append(mc.Lessons, &lc)
		}
		copied.Modules = append(copied.Modules, &mc)
	}
	return &copied
}

func sortCourseTree(c *catalog.Course) {
	sort.Slice(c.Modules, func(i, j int) bool { return c.Modules[i].Position < c.Modules[j].Position })
	for _, m := range c.Modules {
		sort.Slice(m.Lessons, func(i, j int) bool { return m.Lessons[i].Position < m.Lessons[j].Position })
		for _, l := range m.Lessons {
			sort.Slice(l.Chapters, func(i, j int) bool { return l.Chapters[i].Position < l.Chapters[j].Position })
		}
	}
}

func (s *InMemoryCatalogStore) CreateCourse(ctx context.Context, c *catalog.Course) (*catalog.Course, error) {
	if c == nil {
		return nil, ierr.NewError("course cannot be nil").
			WithHint("Course cannot be nil").
			Mark(ierr.ErrValidation)
	}
	stored := copyCourse(c)
	if err := s.courses.Create(ctx, c.ID, stored); err != nil {
		return nil, err
	}
	for _, m := range stored.Modules {
		for _, l := range m.Lessons {
			for _, ch := range l.Chapters {
				ch.CourseID = c.ID
				s.chapters.Set(ctx, ch.ID, ch)
			}
		}
	}
	return copyCourse(stored), nil
}

// ReplaceCourse swaps the course tree wholesale, the test hook for
// "chapters were added or removed after completion facts landed".
func (s *InMemoryCatalogStore) ReplaceCourse(ctx context.Context, c *catalog.Course) {
	stored := copyCourse(c)
	s.courses.Set(ctx, c.ID, stored)
	for _, m := range stored.Modules {
		for _, l := range m.Lessons {
			for _, ch := range l.Chapters {
				ch.CourseID = c.ID
				s.chapters.Set(ctx, ch.ID, ch)
			}
		}
	}
}

func (s *InMemoryCatalogStore) GetCourse(ctx context.Context, id string) (*catalog.Course, error) {
	c, err := s.courses.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("course not found").
			WithHint("Course not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	out := copyCourse(c)
	sortCourseTree(out)
	return out, nil
}

func (s *InMemoryCatalogStore) ListCourseIDs(ctx context.Context, storefrontID string) ([]string, error) {
	courses := s.courses.List(ctx, func(c *catalog.Course) bool {
		return c.StorefrontID == storefrontID && c.Status == types.StatusPublished
	}, nil)
	ids := lo.Map(courses, func(c *catalog.Course, _ int) string { return c.ID })
	sort.Strings(ids)
	return ids, nil
}

func (s *InMemoryCatalogStore) GetChapter(ctx context.Context, id string) (*catalog.Chapter, error) {
	ch, err := s.chapters.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("chapter not found").
			WithHint("Chapter not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	copied := *ch
	return &copied, nil
}

func (s *InMemoryCatalogStore) CreateProduct(ctx context.Context, p *catalog.DigitalProduct) (*catalog.DigitalProduct, error) {
	if p == nil {
		return nil, ierr.NewError("product cannot be nil").
			WithHint("Product cannot be nil").
			Mark(ierr.ErrValidation)
	}
	copied := *p
	if err := s.products.Create(ctx, p.ID, &copied); err != nil {
		return nil, err
	}
	out := *p
	return &out, nil
}

func (s *InMemoryCatalogStore) GetProduct(ctx context.Context, id string) (*catalog.DigitalProduct, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("product not found").
			WithHint("Product not found").
			WithReportableDetails(map[string]interface{}{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (s *InMemoryCatalogStore) ListProductIDs(ctx context.Context, storefrontID string) ([]string, error) {
	products := s.products.List(ctx, func(p *catalog.DigitalProduct) bool {
		return p.StorefrontID == storefrontID && p.Status == types.StatusPublished
	}, nil)
	ids := lo.Map(products, func(p *catalog.DigitalProduct, _ int) string { return p.ID })
	sort.Strings(ids)
	return ids, nil
}

func (s *InMemoryCatalogStore) Clear() {
	s.courses.Clear()
	s.chapters.Clear()
	s.products.Clear()
}
