package repository

import (
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
	gormrepo "github.com/courselane/courselane/internal/repository/gorm"
)

func NewGrantRepository(client postgres.IClient, log *logger.Logger) grant.Repository {
	return gormrepo.NewGrantRepository(client, log)
}

func NewCatalogRepository(client postgres.IClient, log *logger.Logger) catalog.Repository {
	return gormrepo.NewCatalogRepository(client, log)
}

func NewBundleRepository(client postgres.IClient, log *logger.Logger) bundle.Repository {
	return gormrepo.NewBundleRepository(client, log)
}

func NewPlanRepository(client postgres.IClient, log *logger.Logger) plan.Repository {
	return gormrepo.NewPlanRepository(client, log)
}

func NewSubscriptionRepository(client postgres.IClient, log *logger.Logger) subscription.Repository {
	return gormrepo.NewSubscriptionRepository(client, log)
}

func NewProgressRepository(client postgres.IClient, log *logger.Logger) progress.Repository {
	return gormrepo.NewProgressRepository(client, log)
}

func NewCustomerRepository(client postgres.IClient, log *logger.Logger) customer.Repository {
	return gormrepo.NewCustomerRepository(client, log)
}

func NewEnrollmentRepository(client postgres.IClient, log *logger.Logger) enrollment.Repository {
	return gormrepo.NewEnrollmentRepository(client, log)
}
