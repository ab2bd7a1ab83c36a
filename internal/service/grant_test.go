package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/courselane/courselane/internal/api/dto"
	"github.com/courselane/courselane/internal/domain/grant"
	"github.com/courselane/courselane/internal/domain/plan"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/testutil"
	"github.com/courselane/courselane/internal/types"
)

type GrantServiceSuite struct {
	testutil.BaseServiceTestSuite
	service GrantService
	params  ServiceParams
}

func TestGrantService(t *testing.T) {
	suite.Run(t, new(GrantServiceSuite))
}

func (s *GrantServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		GrantRepo:        s.GetStores().GrantRepo,
		CatalogRepo:      s.GetStores().CatalogRepo,
		BundleRepo:       s.GetStores().BundleRepo,
		PlanRepo:         s.GetStores().PlanRepo,
		SubscriptionRepo: s.GetStores().SubscriptionRepo,
		ProgressRepo:     s.GetStores().ProgressRepo,
		CustomerRepo:     s.GetStores().CustomerRepo,
		EnrollmentRepo:   s.GetStores().EnrollmentRepo,
		EventPublisher:   s.GetPublisher(),
	}
	s.service = NewGrantService(s.params)
}

func (s *GrantServiceSuite) purchaseRequest() dto.RecordPurchaseGrantRequest {
	return dto.RecordPurchaseGrantRequest{
		UserID:        "user_1",
		UserEmail:     "learner@example.com",
		StorefrontID:  "store_1",
		Content:       types.NewCourseRef("course_1"),
		Amount:        decimal.NewFromInt(49),
		Currency:      "USD",
		ExternalTxnID: "txn_1",
	}
}

func (s *GrantServiceSuite) TestRecordPurchaseGrant() {
	resp, err := s.service.RecordPurchaseGrant(s.GetContext(), s.purchaseRequest())
	s.NoError(err)
	s.NotNil(resp)
	s.Equal(types.GrantRoutePurchase, resp.Grant.Route)
	s.Equal(types.GrantStatusCompleted, resp.Grant.GrantStatus)
	s.Equal("user_1", resp.Grant.UserID)
	s.True(resp.Grant.Amount.Equal(decimal.NewFromInt(49)))

	s.Len(s.GetPublisher().Messages(types.TopicGrantRecorded), 1)
}

func (s *GrantServiceSuite) TestRecordPurchaseGrantDuplicateDelivery() {
	first, err := s.service.RecordPurchaseGrant(s.GetContext(), s.purchaseRequest())
	s.NoError(err)

	// Same webhook delivered again: same grant back, no second event
	second, err := s.service.RecordPurchaseGrant(s.GetContext(), s.purchaseRequest())
	s.NoError(err)
	s.Equal(first.Grant.ID, second.Grant.ID)

	grants, err := s.GetStores().GrantRepo.List(s.GetContext(), nil)
	s.NoError(err)
	s.Len(grants, 1)
	s.Len(s.GetPublisher().Messages(types.TopicGrantRecorded), 1)
}

func (s *GrantServiceSuite) TestRecordPurchaseGrantValidation() {
	req := s.purchaseRequest()
	req.UserID = ""
	_, err := s.service.RecordPurchaseGrant(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	req = s.purchaseRequest()
	req.Content = types.ContentRef{Type: types.ContentTypeChapter, ID: "chapter_1"}
	_, err = s.service.RecordPurchaseGrant(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	req = s.purchaseRequest()
	req.Amount = decimal.NewFromInt(-1)
	_, err = s.service.RecordPurchaseGrant(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *GrantServiceSuite) TestRecordRefund() {
	created, err := s.service.RecordPurchaseGrant(s.GetContext(), s.purchaseRequest())
	s.NoError(err)

	refunded, err := s.service.RecordRefund(s.GetContext(), created.Grant.ID)
	s.NoError(err)
	s.Equal(types.GrantStatusRefunded, refunded.Grant.GrantStatus)
	s.Len(s.GetPublisher().Messages(types.TopicGrantRefunded), 1)

	// Refunding again is a no-op, not an error
	again, err := s.service.RecordRefund(s.GetContext(), created.Grant.ID)
	s.NoError(err)
	s.Equal(types.GrantStatusRefunded, again.Grant.GrantStatus)
	s.Len(s.GetPublisher().Messages(types.TopicGrantRefunded), 1)
}

func (s *GrantServiceSuite) TestRepurchaseAfterRefund() {
	created, err := s.service.RecordPurchaseGrant(s.GetContext(), s.purchaseRequest())
	s.NoError(err)

	_, err = s.service.RecordRefund(s.GetContext(), created.Grant.ID)
	s.NoError(err)

	// The refund frees the uniqueness slot; buying again produces a
	// fresh completed grant.
	repurchased, err := s.service.RecordPurchaseGrant(s.GetContext(), s.purchaseRequest())
	s.NoError(err)
	s.NotEqual(created.Grant.ID, repurchased.Grant.ID)
	s.Equal(types.GrantStatusCompleted, repurchased.Grant.GrantStatus)
}

func (s *GrantServiceSuite) TestRecordSubscriptionGrant() {
	p := &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "Monthly All Access",
		AllCourses:   true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	_, err := s.GetStores().PlanRepo.Create(s.GetContext(), p)
	s.NoError(err)

	req := dto.RecordSubscriptionGrantRequest{
		UserID:         "user_1",
		UserEmail:      "learner@example.com",
		StorefrontID:   "store_1",
		SubscriptionID: "subs_1",
		PlanID:         "plan_1",
		Amount:         decimal.NewFromInt(19),
		Currency:       "USD",
	}
	resp, err := s.service.RecordSubscriptionGrant(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.GrantRouteSubscription, resp.Grant.Route)
	s.Equal(types.ContentTypePlan, resp.Grant.Content.Type)
	s.Equal("plan_1", resp.Grant.Content.ID)
}

func (s *GrantServiceSuite) TestRecordSubscriptionGrantArchivedPlan() {
	p := &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "Monthly All Access",
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	_, err := s.GetStores().PlanRepo.Create(s.GetContext(), p)
	s.NoError(err)
	s.NoError(s.GetStores().PlanRepo.Archive(s.GetContext(), "plan_1"))

	req := dto.RecordSubscriptionGrantRequest{
		UserID:         "user_1",
		UserEmail:      "learner@example.com",
		StorefrontID:   "store_1",
		SubscriptionID: "subs_1",
		PlanID:         "plan_1",
		Amount:         decimal.NewFromInt(19),
	}
	_, err = s.service.RecordSubscriptionGrant(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *GrantServiceSuite) TestRecordAdminGrantIdempotent() {
	req := dto.RecordAdminGrantRequest{
		UserID:       "user_1",
		UserEmail:    "learner@example.com",
		StorefrontID: "store_1",
		Content:      types.NewCourseRef("course_1"),
	}

	first, err := s.service.RecordAdminGrant(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.GrantRouteAdminOverride, first.Grant.Route)
	s.True(first.Grant.Amount.IsZero())

	second, err := s.service.RecordAdminGrant(s.GetContext(), req)
	s.NoError(err)
	s.Equal(first.Grant.ID, second.Grant.ID)
}

func (s *GrantServiceSuite) TestTouchAccess() {
	created, err := s.service.RecordPurchaseGrant(s.GetContext(), s.purchaseRequest())
	s.NoError(err)

	s.NoError(s.service.TouchAccess(s.GetContext(), created.Grant.ID))
	s.NoError(s.service.TouchAccess(s.GetContext(), created.Grant.ID))

	got, err := s.service.GetGrant(s.GetContext(), created.Grant.ID)
	s.NoError(err)
	s.Equal(2, got.Grant.AccessCount)
	s.NotNil(got.Grant.LastAccessedAt)
}

func (s *GrantServiceSuite) TestListGrantsFilters() {
	_, err := s.service.RecordPurchaseGrant(s.GetContext(), s.purchaseRequest())
	s.NoError(err)

	other := s.purchaseRequest()
	other.UserID = "user_2"
	other.Content = types.NewProductRef("prod_1")
	_, err = s.service.RecordPurchaseGrant(s.GetContext(), other)
	s.NoError(err)

	resp, err := s.service.ListGrants(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(2, resp.Total)

	filtered, err := s.service.ListGrants(s.GetContext(), &grant.Filter{
		QueryFilter: types.NewDefaultQueryFilter(),
		UserID:      "user_2",
	})
	s.NoError(err)
	s.Equal(1, filtered.Total)
	s.Equal("user_2", filtered.Items[0].Grant.UserID)
}

// blindFirstReadGrantStore hides rows from the first two completed-grant
// lookups so two concurrent writers both get past the fast-path read and
// race on the insert.
type blindFirstReadGrantStore struct {
	grant.Repository
	reads atomic.Int32
}

func (b *blindFirstReadGrantStore) FindCompletedByContent(ctx context.Context, userID string, content types.ContentRef, route types.GrantRoute) (*grant.Grant, error) {
	if b.reads.Add(1) <= 2 {
		return nil, ierr.NewError("no completed grant for content").
			Mark(ierr.ErrNotFound)
	}
	return b.Repository.FindCompletedByContent(ctx, userID, content, route)
}

func (s *GrantServiceSuite) TestRecordPurchaseGrantConcurrentDuplicate() {
	params := s.params
	params.GrantRepo = &blindFirstReadGrantStore{Repository: s.GetStores().GrantRepo}
	svc := NewGrantService(params)

	var wg sync.WaitGroup
	results := make([]*dto.GrantResponse, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.RecordPurchaseGrant(s.GetContext(), s.purchaseRequest())
		}(i)
	}
	wg.Wait()

	// The loser of the insert race resolves to the winner's row
	s.NoError(errs[0])
	s.NoError(errs[1])
	s.Equal(results[0].Grant.ID, results[1].Grant.ID)

	grants, err := s.GetStores().GrantRepo.List(s.GetContext(), nil)
	s.NoError(err)
	s.Len(grants, 1)
	s.Len(s.GetPublisher().Messages(types.TopicGrantRecorded), 1)
}

func (s *GrantServiceSuite) TestFindCompletedByContentOldestWins() {
	older := &grant.Grant{
		ID:           "grant_older",
		UserID:       "user_1",
		UserEmail:    "learner@example.com",
		StorefrontID: "store_1",
		Content:      types.NewCourseRef("course_1"),
		Route:        types.GrantRouteAdminOverride,
		GrantStatus:  types.GrantStatusCompleted,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := &grant.Grant{
		ID:           "grant_newer",
		UserID:       "user_1",
		UserEmail:    "learner@example.com",
		StorefrontID: "store_1",
		Content:      types.NewCourseRef("course_1"),
		Route:        types.GrantRoutePurchase,
		GrantStatus:  types.GrantStatusCompleted,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}

	for _, g := range []*grant.Grant{older, newer} {
		_, err := s.GetStores().GrantRepo.Create(s.GetContext(), g)
		s.Require().NoError(err)
	}

	// Any-route lookups return the oldest covering grant, matching the
	// created_at ordering of the persistent repository
	found, err := s.GetStores().GrantRepo.FindCompletedByContent(s.GetContext(), "user_1", types.NewCourseRef("course_1"), "")
	s.NoError(err)
	s.Equal("grant_older", found.ID)
}
