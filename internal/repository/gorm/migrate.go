package gorm

import (
	"context"

	"github.com/courselane/courselane/internal/domain/bundle"
	"github.com/courselane/courselane/internal/domain/catalog"
	"github.com/courselane/courselane/internal/domain/customer"
	"github.com/courselane/courselane/internal/domain/enrollment"
	"github.com/courselane/courselane/internal/domain/grant"
	"github.com/courselane/courselane/internal/domain/plan"
	"github.com/courselane/courselane/internal/domain/progress"
	"github.com/courselane/courselane/internal/domain/subscription"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/postgres"
)

// purchaseGrantUniqueIndex is the ledger's purchase-idempotency
// constraint: at most one completed purchase-route grant per
// (user, content). The store's conflict detection on this index is the
// serialization point for concurrent duplicate webhook deliveries.
const purchaseGrantUniqueIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_grants_purchase_unique
ON grants (user_id, content_type, content_id)
WHERE route = 'purchase' AND grant_status = 'completed'`

// Migrate creates the schema. Development convenience; production
// deployments run versioned migrations out of band.
func Migrate(ctx context.Context, client postgres.IClient) error {
	db := client.Writer(ctx)

	err := db.AutoMigrate(
		&catalog.Course{},
		&catalog.Module{},
		&catalog.Lesson{},
		&catalog.Chapter{},
		&catalog.DigitalProduct{},
		&bundle.Bundle{},
		&bundle.Member{},
		&plan.Plan{},
		&subscription.Subscription{},
		&grant.Grant{},
		&progress.Fact{},
		&customer.Customer{},
		&enrollment.Enrollment{},
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Schema migration failed").
			Mark(ierr.ErrDatabase)
	}

	if err := db.Exec(purchaseGrantUniqueIndex).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create purchase grant uniqueness index").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
