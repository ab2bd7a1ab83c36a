package types

import (
	"fmt"

	ierr "github.com/courselane/courselane/internal/errors"
)

// ContentType discriminates the kinds of gated content a grant can cover
type ContentType string

const (
	ContentTypeCourse  ContentType = "course"
	ContentTypeProduct ContentType = "product"
	ContentTypeBundle  ContentType = "bundle"
	// ContentTypeChapter is only ever seen by the resolver (free-chapter
	// shortcut and chapter-level gating); grants are never recorded
	// against individual chapters.
	ContentTypeChapter ContentType = "chapter"
	// ContentTypePlan marks ledger bookkeeping rows for subscription
	// billing periods. The resolver never grants on a plan ref directly;
	// subscription entitlement is derived from live subscription state.
	ContentTypePlan ContentType = "plan"
)

func (t ContentType) Validate() error {
	switch t {
	case ContentTypeCourse, ContentTypeProduct, ContentTypeBundle, ContentTypeChapter, ContentTypePlan:
		return nil
	default:
		return ierr.NewError("invalid content type").
			WithHint("Content type must be one of: course, product, bundle, chapter, plan").
			WithReportableDetails(map[string]interface{}{
				"content_type": string(t),
			}).
			Mark(ierr.ErrValidation)
	}
}

// ContentRef is a closed reference to one piece of gated content.
// It replaces the loosely typed course/product/bundle unions of the
// legacy system with an exhaustive tagged pair.
type ContentRef struct {
	Type ContentType `json:"type"`
	ID   string      `json:"id"`
}

func NewCourseRef(id string) ContentRef  { return ContentRef{Type: ContentTypeCourse, ID: id} }
func NewProductRef(id string) ContentRef { return ContentRef{Type: ContentTypeProduct, ID: id} }
func NewBundleRef(id string) ContentRef  { return ContentRef{Type: ContentTypeBundle, ID: id} }
func NewChapterRef(id string) ContentRef { return ContentRef{Type: ContentTypeChapter, ID: id} }
func NewPlanRef(id string) ContentRef    { return ContentRef{Type: ContentTypePlan, ID: id} }

func (c ContentRef) Validate() error {
	if c.ID == "" {
		return ierr.NewError("content id is required").
			WithHint("Please provide a valid content ID").
			Mark(ierr.ErrValidation)
	}
	return c.Type.Validate()
}

func (c ContentRef) Equal(other ContentRef) bool {
	return c.Type == other.Type && c.ID == other.ID
}

func (c ContentRef) IsZero() bool {
	return c.Type == "" && c.ID == ""
}

// String renders the reference as "type:id", the form used in logs and
// in the ledger's uniqueness key.
func (c ContentRef) String() string {
	return fmt.Sprintf("%s:%s", c.Type, c.ID)
}
