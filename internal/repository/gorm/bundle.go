package gorm

import (
	"context"

	"gorm.io/gorm"

	domainBundle "github.com/courselane/courselane/internal/domain/bundle"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/types"
)

type bundleRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewBundleRepository(client postgres.IClient, log *logger.Logger) domainBundle.Repository {
	return &bundleRepository{
		client: client,
		log:    log,
	}
}

func (r *bundleRepository) Create(ctx context.Context, b *domainBundle.Bundle) (*domainBundle.Bundle, error) {
	if err := r.client.Writer(ctx).Create(b).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create bundle").
			WithReportableDetails(map[string]interface{}{
				"bundle_id": b.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return b, nil
}

func (r *bundleRepository) Get(ctx context.Context, id string) (*domainBundle.Bundle, error) {
	var b domainBundle.Bundle
	err := r.client.Reader(ctx).
		Preload("Members").
		Where("id = ? AND status != ?", id, types.StatusDeleted).
		First(&b).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("bundle not found").
				WithHint("Bundle not found").
				WithReportableDetails(map[string]interface{}{
					"bundle_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get bundle").
			Mark(ierr.ErrDatabase)
	}
	return &b, nil
}

func (r *bundleRepository) ListContainingContent(ctx context.Context, storefrontID string, ref types.ContentRef) ([]*domainBundle.Bundle, error) {
	var bundles []*domainBundle.Bundle
	err := r.client.Reader(ctx).
		Preload("Members").
		Joins("JOIN bundle_members ON bundle_members.bundle_id = bundles.id").
		Where("bundles.storefront_id = ? AND bundles.status = ?", storefrontID, types.StatusPublished).
		Where("bundle_members.content_type = ? AND bundle_members.content_id = ?", ref.Type, ref.ID).
		Distinct("bundles.*").
		Find(&bundles).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list bundles containing content").
			WithReportableDetails(map[string]interface{}{
				"content": ref.String(),
			}).
			Mark(ierr.ErrDatabase)
	}
	return bundles, nil
}
