package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"

	domainGrant "github.com/courselane/courselane/internal/domain/grant"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/types"
)

type grantRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewGrantRepository(client postgres.IClient, log *logger.Logger) domainGrant.Repository {
	return &grantRepository{
		client: client,
		log:    log,
	}
}

func (r *grantRepository) Create(ctx context.Context, g *domainGrant.Grant) (*domainGrant.Grant, error) {
	r.log.Debugw("creating grant",
		"grant_id", g.ID,
		"user_id", g.UserID,
		"content", g.Content.String(),
		"route", g.Route,
	)

	if err := r.client.Writer(ctx).Create(g).Error; err != nil {
		if ierr.Is(err, gorm.ErrDuplicatedKey) {
			// The unique partial index on completed purchase grants is
			// the serialization point for duplicate webhook deliveries.
			return nil, ierr.WithError(err).
				WithHint("A completed purchase grant already exists for this user and content").
				WithReportableDetails(map[string]interface{}{
					"user_id": g.UserID,
					"content": g.Content.String(),
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to create grant").
			WithReportableDetails(map[string]interface{}{
				"grant_id": g.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return g, nil
}

func (r *grantRepository) Get(ctx context.Context, id string) (*domainGrant.Grant, error) {
	var g domainGrant.Grant
	err := r.client.Reader(ctx).
		Where("id = ? AND status != ?", id, types.StatusDeleted).
		First(&g).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("grant not found").
				WithHint("Grant not found").
				WithReportableDetails(map[string]interface{}{
					"grant_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get grant").
			Mark(ierr.ErrDatabase)
	}
	return &g, nil
}

func (r *grantRepository) Update(ctx context.Context, g *domainGrant.Grant) (*domainGrant.Grant, error) {
	g.UpdatedAt = time.Now().UTC()
	if err := r.client.Writer(ctx).Save(g).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update grant").
			WithReportableDetails(map[string]interface{}{
				"grant_id": g.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return g, nil
}

func (r *grantRepository) List(ctx context.Context, filter *domainGrant.Filter) ([]*domainGrant.Grant, error) {
	q := r.client.Reader(ctx).Model(&domainGrant.Grant{}).
		Where("status != ?", types.StatusDeleted)

	if filter != nil {
		if filter.UserID != "" {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if filter.StorefrontID != "" {
			q = q.Where("storefront_id = ?", filter.StorefrontID)
		}
		if filter.ContentID != "" {
			q = q.Where("content_id = ?", filter.ContentID)
		}
		if filter.ContentType != "" {
			q = q.Where("content_type = ?", filter.ContentType)
		}
		if len(filter.Routes) > 0 {
			q = q.Where("route IN ?", filter.Routes)
		}
		if len(filter.GrantStatuses) > 0 {
			q = q.Where("grant_status IN ?", filter.GrantStatuses)
		}
	}

	var grants []*domainGrant.Grant
	err := q.Order("created_at DESC").
		Limit(filter.GetLimit()).
		Offset(filter.GetOffset()).
		Find(&grants).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list grants").
			Mark(ierr.ErrDatabase)
	}
	return grants, nil
}

func (r *grantRepository) FindCompletedByContent(ctx context.Context, userID string, content types.ContentRef, route types.GrantRoute) (*domainGrant.Grant, error) {
	q := r.client.Reader(ctx).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, content.Type, content.ID).
		Where("grant_status = ? AND status != ?", types.GrantStatusCompleted, types.StatusDeleted)
	if route != "" {
		q = q.Where("route = ?", route)
	}

	var g domainGrant.Grant
	if err := q.Order("created_at ASC").First(&g).Error; err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("no completed grant for content").
				WithReportableDetails(map[string]interface{}{
					"user_id": userID,
					"content": content.String(),
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up grant by content").
			Mark(ierr.ErrDatabase)
	}
	return &g, nil
}

func (r *grantRepository) TouchAccess(ctx context.Context, id string) error {
	err := r.client.Writer(ctx).Model(&domainGrant.Grant{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"access_count":     gorm.Expr("access_count + 1"),
			"last_accessed_at": time.Now().UTC(),
		}).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record grant access").
			WithReportableDetails(map[string]interface{}{
				"grant_id": id,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
