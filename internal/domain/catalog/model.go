package catalog

import (
	"github.com/shopspring/decimal"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

// Course is the root of the hierarchical learning content tree:
// Course -> ordered Modules -> ordered Lessons -> ordered Chapters.
type Course struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	StorefrontID string          `json:"storefront_id" gorm:"index"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(20,8)"`
	Currency     string          `json:"currency"`

	Modules []*Module `json:"modules,omitempty" gorm:"foreignKey:CourseID"`

	types.BaseModel
}

func (Course) TableName() string {
	return "courses"
}

type Module struct {
	ID       string `json:"id" gorm:"primaryKey"`
	CourseID string `json:"course_id" gorm:"index"`
	Title    string `json:"title"`
	Position int    `json:"position"`

	Lessons []*Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`

	types.BaseModel
}

func (Module) TableName() string {
	return "course_modules"
}

type Lesson struct {
	ID       string `json:"id" gorm:"primaryKey"`
	ModuleID string `json:"module_id" gorm:"index"`
	Title    string `json:"title"`
	Position int    `json:"position"`

	Chapters []*Chapter `json:"chapters,omitempty" gorm:"foreignKey:LessonID"`

	types.BaseModel
}

func (Lesson) TableName() string {
	return "lessons"
}

// Chapter is the atomic unit of consumption. CourseID is denormalized so
// progress recounts and chapter-level gating resolve the owning course
// without walking the tree upward.
type Chapter struct {
	ID       string `json:"id" gorm:"primaryKey"`
	LessonID string `json:"lesson_id" gorm:"index"`
	CourseID string `json:"course_id" gorm:"index"`
	Title    string `json:"title"`
	Position int    `json:"position"`
	IsFree   bool   `json:"is_free"`

	types.BaseModel
}

func (Chapter) TableName() string {
	return "chapters"
}

// DigitalProduct is non-hierarchical gated content (download, template, ...)
type DigitalProduct struct {
	ID           string          `json:"id" gorm:"primaryKey"`
	StorefrontID string          `json:"storefront_id" gorm:"index"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(20,8)"`
	Currency     string          `json:"currency"`

	types.BaseModel
}

func (DigitalProduct) TableName() string {
	return "digital_products"
}

func (c *Course) Validate() error {
	if c.StorefrontID == "" {
		return ierr.NewError("storefront id is required").
			WithHint("Course must belong to a storefront").
			Mark(ierr.ErrValidation)
	}
	if c.Title == "" {
		return ierr.NewError("title is required").
			WithHint("Course title is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (p *DigitalProduct) Validate() error {
	if p.StorefrontID == "" {
		return ierr.NewError("storefront id is required").
			WithHint("Product must belong to a storefront").
			Mark(ierr.ErrValidation)
	}
	if p.Title == "" {
		return ierr.NewError("title is required").
			WithHint("Product title is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ChapterIDs enumerates every chapter id under the course's current
// tree, in module/lesson/chapter position order. Progress percentages
// are always recomputed against this live enumeration.
func (c *Course) ChapterIDs() []string {
	ids := make([]string, 0)
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			for _, ch := range l.Chapters {
				ids = append(ids, ch.ID)
			}
		}
	}
	return ids
}

// LessonChapterIDs returns the chapter ids of one lesson in the tree,
// or nil when the lesson is not part of this course.
func (c *Course) LessonChapterIDs(lessonID string) []string {
	for _, m := range c.Modules {
		for _, l := range m.Lessons {
			if l.ID != lessonID {
				continue
			}
			ids := make([]string, 0, len(l.Chapters))
			for _, ch := range l.Chapters {
				ids = append(ids, ch.ID)
			}
			return ids
		}
	}
	return nil
}

// ModuleChapterIDs returns the chapter ids of one module in the tree,
// or nil when the module is not part of this course.
func (c *Course) ModuleChapterIDs(moduleID string) []string {
	for _, m := range c.Modules {
		if m.ID != moduleID {
			continue
		}
		ids := make([]string, 0)
		for _, l := range m.Lessons {
			for _, ch := range l.Chapters {
				ids = append(ids, ch.ID)
			}
		}
		return ids
	}
	return nil
}
