package catalog

import (
	"context"
)

// Repository defines read/write access to the storefront catalog.
// Reads must always reflect the live catalog: all-courses plans and
// progress recounts depend on membership changes being visible on the
// next call, so implementations must not cache.
type Repository interface {
	CreateCourse(ctx context.Context, c *Course) (*Course, error)
	// GetCourse returns the course with its full module/lesson/chapter
	// tree preloaded in position order.
	GetCourse(ctx context.Context, id string) (*Course, error)
	ListCourseIDs(ctx context.Context, storefrontID string) ([]string, error)

	GetChapter(ctx context.Context, id string) (*Chapter, error)

	CreateProduct(ctx context.Context, p *DigitalProduct) (*DigitalProduct, error)
	GetProduct(ctx context.Context, id string) (*DigitalProduct, error)
	ListProductIDs(ctx context.Context, storefrontID string) ([]string, error)
}
