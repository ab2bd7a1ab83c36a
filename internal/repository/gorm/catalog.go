package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/courselane/courselane/internal/domain/catalog"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/types"
)

type catalogRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewCatalogRepository(client postgres.IClient, log *logger.Logger) catalog.Repository {
	return &catalogRepository{
		client: client,
		log:    log,
	}
}

func (r *catalogRepository) CreateCourse(ctx context.Context, c *catalog.Course) (*catalog.Course, error) {
	if err := r.client.Writer(ctx).Create(c).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create course").
			WithReportableDetails(map[string]interface{}{
				"course_id": c.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return c, nil
}

func (r *catalogRepository) GetCourse(ctx context.Context, id string) (*catalog.Course, error) {
	var c catalog.Course
	err := r.client.Reader(ctx).
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Modules.Lessons.Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ? AND status != ?", id, types.StatusDeleted).
		First(&c).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("course not found").
				WithHint("Course not found").
				WithReportableDetails(map[string]interface{}{
					"course_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get course").
			Mark(ierr.ErrDatabase)
	}
	return &c, nil
}

func (r *catalogRepository) ListCourseIDs(ctx context.Context, storefrontID string) ([]string, error) {
	var ids []string
	err := r.client.Reader(ctx).Model(&catalog.Course{}).
		Where("storefront_id = ? AND status = ?", storefrontID, types.StatusPublished).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list course ids").
			Mark(ierr.ErrDatabase)
	}
	return ids, nil
}

func (r *catalogRepository) GetChapter(ctx context.Context, id string) (*catalog.Chapter, error) {
	var ch catalog.Chapter
	err := r.client.Reader(ctx).
		Where("id = ? AND status != ?", id, types.StatusDeleted).
		First(&ch).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("chapter not found").
				WithHint("Chapter not found").
				WithReportableDetails(map[string]interface{}{
					"chapter_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get chapter").
			Mark(ierr.ErrDatabase)
	}
	return &ch, nil
}

func (r *catalogRepository) CreateProduct(ctx context.Context, p *catalog.DigitalProduct) (*catalog.DigitalProduct, error) {
	if err := r.client.Writer(ctx).Create(p).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create product").
			WithReportableDetails(map[string]interface{}{
				"product_id": p.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *catalogRepository) GetProduct(ctx context.Context, id string) (*catalog.DigitalProduct, error) {
	var p catalog.DigitalProduct
	err := r.client.Reader(ctx).
		Where("id = ? AND status != ?", id, types.StatusDeleted).
		First(&p).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("product not found").
				WithHint("Product not found").
				WithReportableDetails(map[string]interface{}{
					"product_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get product").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *catalogRepository) ListProductIDs(ctx context.Context, storefrontID string) ([]string, error) {
	var ids []string
	err := r.client.Reader(ctx).Model(&catalog.DigitalProduct{}).
		Where("storefront_id = ? AND status = ?", storefrontID, types.StatusPublished).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list product ids").
			Mark(ierr.ErrDatabase)
	}
	return ids, nil
}
