package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"

	domainPlan "github.com/courselane/courselane/internal/domain/plan"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/types"
)

type planRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewPlanRepository(client postgres.IClient, log *logger.Logger) domainPlan.Repository {
	return &planRepository{
		client: client,
		log:    log,
	}
}

func (r *planRepository) Create(ctx context.Context, p *domainPlan.Plan) (*domainPlan.Plan, error) {
	if err := r.client.Writer(ctx).Create(p).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create plan").
			WithReportableDetails(map[string]interface{}{
				"plan_id": p.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*domainPlan.Plan, error) {
	var p domainPlan.Plan
	err := r.client.Reader(ctx).
		Where("id = ? AND status != ?", id, types.StatusDeleted).
		First(&p).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("plan not found").
				WithHint("Plan not found").
				WithReportableDetails(map[string]interface{}{
					"plan_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) Update(ctx context.Context, p *domainPlan.Plan) (*domainPlan.Plan, error) {
	p.UpdatedAt = time.Now().UTC()
	if err := r.client.Writer(ctx).Save(p).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update plan").
			WithReportableDetails(map[string]interface{}{
				"plan_id": p.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *planRepository) ListByStorefront(ctx context.Context, storefrontID string) ([]*domainPlan.Plan, error) {
	var plans []*domainPlan.Plan
	err := r.client.Reader(ctx).
		Where("storefront_id = ? AND status != ?", storefrontID, types.StatusDeleted).
		Order("tier ASC, created_at ASC").
		Find(&plans).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}

func (r *planRepository) Archive(ctx context.Context, id string) error {
	res := r.client.Writer(ctx).Model(&domainPlan.Plan{}).
		Where("id = ? AND status = ?", id, types.StatusPublished).
		Updates(map[string]interface{}{
			"status":     types.StatusArchived,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to archive plan").
			WithReportableDetails(map[string]interface{}{
				"plan_id": id,
			}).
			Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		return ierr.NewError("plan not found or already archived").
			WithHint("Plan not found or already archived").
			WithReportableDetails(map[string]interface{}{
				"plan_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
