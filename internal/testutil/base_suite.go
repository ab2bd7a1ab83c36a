package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/courselane/courselane/internal/config"
	"github.com/courselane/courselane/internal/logger"
	"github.com/courselane/courselane/internal/types"
)

// Stores bundles every in-memory repository a service test can wire
type Stores struct {
	GrantRepo        *InMemoryGrantStore
	CatalogRepo      *InMemoryCatalogStore
	BundleRepo       *InMemoryBundleStore
	PlanRepo         *InMemoryPlanStore
	SubscriptionRepo *InMemorySubscriptionStore
	ProgressRepo     *InMemoryProgressStore
	CustomerRepo     *InMemoryCustomerStore
	EnrollmentRepo   *InMemoryEnrollmentStore
}

func NewStores() *Stores {
	return &Stores{
		GrantRepo:        NewInMemoryGrantStore(),
		CatalogRepo:      NewInMemoryCatalogStore(),
		BundleRepo:       NewInMemoryBundleStore(),
		PlanRepo:         NewInMemoryPlanStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		ProgressRepo:     NewInMemoryProgressStore(),
		CustomerRepo:     NewInMemoryCustomerStore(),
		EnrollmentRepo:   NewInMemoryEnrollmentStore(),
	}
}

// BaseServiceTestSuite wires the common fixtures of a service test:
// a request-scoped context, fresh in-memory stores, and a recording
// event publisher. Suites embed it and call SetupTest.
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	cfg       *config.Configuration
	logger    *logger.Logger
	stores    *Stores
	publisher *InMemoryPublisher
}

func (s *BaseServiceTestSuite) SetupTest() {
	ctx := context.Background()
	ctx = types.SetRequestID(ctx, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	ctx = types.SetUserID(ctx, "user_test")
	s.ctx = ctx

	s.cfg = config.GetDefaultConfig()
	s.logger = logger.GetLogger()
	s.stores = NewStores()
	s.publisher = NewInMemoryPublisher()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetStores() *Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetPublisher() *InMemoryPublisher {
	return s.publisher
}
