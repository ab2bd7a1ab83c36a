package gorm

import (
	"context"
	"time"

	"gorm.io/gorm"

	domainSub "github.com/courselane/courselane/internal/domain/subscription"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/types"
)

type subscriptionRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewSubscriptionRepository(client postgres.IClient, log *logger.Logger) domainSub.Repository {
	return &subscriptionRepository{
		client: client,
		log:    log,
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *domainSub.Subscription) (*domainSub.Subscription, error) {
	if err := r.client.Writer(ctx).Create(s).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": s.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return s, nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*domainSub.Subscription, error) {
	var s domainSub.Subscription
	err := r.client.Reader(ctx).
		Where("id = ? AND status != ?", id, types.StatusDeleted).
		First(&s).Error
	if err != nil {
		if ierr.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("subscription not found").
				WithHint("Subscription not found").
				WithReportableDetails(map[string]interface{}{
					"subscription_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, s *domainSub.Subscription) (*domainSub.Subscription, error) {
	s.UpdatedAt = time.Now().UTC()
	if err := r.client.Writer(ctx).Save(s).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update subscription").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": s.ID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return s, nil
}

func (r *subscriptionRepository) ListNonCanceledByUserAndStorefront(ctx context.Context, userID, storefrontID string) ([]*domainSub.Subscription, error) {
	var subs []*domainSub.Subscription
	err := r.client.Reader(ctx).
		Where("user_id = ? AND storefront_id = ?", userID, storefrontID).
		Where("state != ? AND status != ?", types.SubscriptionStateCanceled, types.StatusDeleted).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			WithReportableDetails(map[string]interface{}{
				"user_id":       userID,
				"storefront_id": storefrontID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return subs, nil
}
