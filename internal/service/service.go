package service

import (
	"github.com/courselane/courselane/internal/config"
	"github.com/courselane/courselane/internal/domain/bundle"
	"github.com/courselane/courselane/internal/domain/catalog"
	"github.com/courselane/courselane/internal/domain/customer"
	"github.com/courselane/courselane/internal/domain/enrollment"
	"github.com/courselane/courselane/internal/domain/grant"
	"github.com/courselane/courselane/internal/domain/plan"
	"github.com/courselane/courselane/internal/domain/progress"
	"github.com/courselane/courselane/internal/domain/subscription"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/postgres"
	"github.com/courselane/courselane/internal/pubsub"
)

// ServiceParams carries every dependency a service can need. Services
// embed it and pick what they use; tests wire in-memory stores.
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	GrantRepo        grant.Repository
	CatalogRepo      catalog.Repository
	BundleRepo       bundle.Repository
	PlanRepo         plan.Repository
	SubscriptionRepo subscription.Repository
	ProgressRepo     progress.Repository
	CustomerRepo     customer.Repository
	EnrollmentRepo   enrollment.Repository

	EventPublisher pubsub.Publisher
}
