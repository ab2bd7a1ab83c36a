package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/courselane/courselane/internal/api/dto"
	"github.com/courselane/courselane/internal/domain/bundle"
	"github.com/courselane/courselane/internal/domain/catalog"
	"github.com/courselane/courselane/internal/domain/grant"
	"github.com/courselane/courselane/internal/domain/plan"
	"github.com/courselane/courselane/internal/domain/subscription"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/testutil"
	"github.com/courselane/courselane/internal/types"
)

type EntitlementServiceSuite struct {
	testutil.BaseServiceTestSuite
	service      EntitlementService
	grantService GrantService
	params       ServiceParams
}

func TestEntitlementService(t *testing.T) {
	suite.Run(t, new(EntitlementServiceSuite))
}

func (s *EntitlementServiceSuite) SetupTest() {
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
	s.service = NewEntitlementService(s.params)
	s.grantService = NewGrantService(s.params)

	s.seedCatalog()
}

// seedCatalog builds one course with a free and a paid chapter, plus a
// standalone product.
func (s *EntitlementServiceSuite) seedCatalog() {
	course := &catalog.Course{
		ID:           "course_1",
		StorefrontID: "store_1",
		Title:        "Sourdough Basics",
		Price:        decimal.NewFromInt(49),
		Currency:     "USD",
		Modules: []*catalog.Module{
			{
				ID:       "cmod_1",
				CourseID: "course_1",
				Title:    "Getting Started",
				Position: 1,
				Lessons: []*catalog.Lesson{
					{
						ID:       "lesson_1",
						ModuleID: "cmod_1",
						Title:    "The Starter",
						Position: 1,
						Chapters: []*catalog.Chapter{
							{ID: "chapter_free", LessonID: "lesson_1", Title: "Welcome", Position: 1, IsFree: true},
							{ID: "chapter_paid", LessonID: "lesson_1", Title: "Feeding Schedule", Position: 2},
						},
					},
				},
			},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	_, err := s.GetStores().CatalogRepo.CreateCourse(s.GetContext(), course)
	s.Require().NoError(err)

	_, err = s.GetStores().CatalogRepo.CreateProduct(s.GetContext(), &catalog.DigitalProduct{
		ID:           "prod_1",
		StorefrontID: "store_1",
		Title:        "Recipe Pack",
		Price:        decimal.NewFromInt(9),
		Currency:     "USD",
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})
	s.Require().NoError(err)
}

func (s *EntitlementServiceSuite) resolve(userID string, content types.ContentRef) *dto.AccessDecision {
	decision, err := s.service.Resolve(s.GetContext(), dto.ResolveAccessRequest{
		UserID:       userID,
		StorefrontID: "store_1",
		Content:      content,
	})
	s.Require().NoError(err)
	return decision
}

func (s *EntitlementServiceSuite) purchaseCourse(userID string) {
	_, err := s.grantService.RecordPurchaseGrant(s.GetContext(), dto.RecordPurchaseGrantRequest{
		UserID:       userID,
		UserEmail:    userID + "@example.com",
		StorefrontID: "store_1",
		Content:      types.NewCourseRef("course_1"),
		Amount:       decimal.NewFromInt(49),
		Currency:     "USD",
	})
	s.Require().NoError(err)
}

func (s *EntitlementServiceSuite) TestFreeChapterNeedsNoGrant() {
	decision := s.resolve("user_1", types.ContentRef{Type: types.ContentTypeChapter, ID: "chapter_free"})
	s.True(decision.HasAccess)
}

func (s *EntitlementServiceSuite) TestPaidChapterGatedByCourse() {
	decision := s.resolve("user_1", types.ContentRef{Type: types.ContentTypeChapter, ID: "chapter_paid"})
	s.False(decision.HasAccess)

	s.purchaseCourse("user_1")

	decision = s.resolve("user_1", types.ContentRef{Type: types.ContentTypeChapter, ID: "chapter_paid"})
	s.True(decision.HasAccess)
	s.Equal(types.GrantRoutePurchase, decision.Route)
}

func (s *EntitlementServiceSuite) TestPurchaseGrantsCourse() {
	s.purchaseCourse("user_1")

	decision := s.resolve("user_1", types.NewCourseRef("course_1"))
	s.True(decision.HasAccess)
	s.Equal(types.GrantRoutePurchase, decision.Route)
	s.NotNil(decision.Grant)

	// Another user is unaffected
	s.False(s.resolve("user_2", types.NewCourseRef("course_1")).HasAccess)
}

func (s *EntitlementServiceSuite) TestRefundedGrantStopsGranting() {
	s.purchaseCourse("user_1")
	grants, err := s.GetStores().GrantRepo.List(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Require().Len(grants, 1)

	_, err = s.grantService.RecordRefund(s.GetContext(), grants[0].ID)
	s.Require().NoError(err)

	s.False(s.resolve("user_1", types.NewCourseRef("course_1")).HasAccess)
}

func (s *EntitlementServiceSuite) TestBundlePurchaseUnlocksMembers() {
	b := &bundle.Bundle{
		ID:           "bundle_1",
		StorefrontID: "store_1",
		Name:         "Baking Bundle",
		Members: []*bundle.Member{
			{ID: "bundle_m1", BundleID: "bundle_1", Content: types.NewCourseRef("course_1"), BaseModel: types.GetDefaultBaseModel(s.GetContext())},
			{ID: "bundle_m2", BundleID: "bundle_1", Content: types.NewProductRef("prod_1"), BaseModel: types.GetDefaultBaseModel(s.GetContext())},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	_, err := s.GetStores().BundleRepo.Create(s.GetContext(), b)
	s.Require().NoError(err)

	_, err = s.grantService.RecordPurchaseGrant(s.GetContext(), dto.RecordPurchaseGrantRequest{
		UserID:       "user_1",
		UserEmail:    "user_1@example.com",
		StorefrontID: "store_1",
		Content:      types.NewBundleRef("bundle_1"),
		Amount:       decimal.NewFromInt(99),
	})
	s.Require().NoError(err)

	course := s.resolve("user_1", types.NewCourseRef("course_1"))
	s.True(course.HasAccess)
	s.Equal(types.GrantRouteBundle, course.Route)

	product := s.resolve("user_1", types.NewProductRef("prod_1"))
	s.True(product.HasAccess)
	s.Equal(types.GrantRouteBundle, product.Route)
}

func (s *EntitlementServiceSuite) seedSubscription(state types.SubscriptionState, p *plan.Plan) {
	_, err := s.GetStores().PlanRepo.Create(s.GetContext(), p)
	s.Require().NoError(err)

	_, err = s.GetStores().SubscriptionRepo.Create(s.GetContext(), &subscription.Subscription{
		ID:            "subs_1",
		UserID:        "user_1",
		StorefrontID:  "store_1",
		PlanID:        p.ID,
		State:         state,
		BillingPeriod: types.BillingPeriodMonthly,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	})
	s.Require().NoError(err)
}

func (s *EntitlementServiceSuite) TestActiveSubscriptionAllCourses() {
	s.seedSubscription(types.SubscriptionStateActive, &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "All Access",
		AllCourses:   true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})

	decision := s.resolve("user_1", types.NewCourseRef("course_1"))
	s.True(decision.HasAccess)
	s.Equal(types.GrantRouteSubscription, decision.Route)

	// Products are not covered by a courses-only rule
	s.False(s.resolve("user_1", types.NewProductRef("prod_1")).HasAccess)
}

func (s *EntitlementServiceSuite) TestTrialingSubscriptionEntitles() {
	s.seedSubscription(types.SubscriptionStateTrialing, &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "All Access",
		AllCourses:   true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})

	s.True(s.resolve("user_1", types.NewCourseRef("course_1")).HasAccess)
}

func (s *EntitlementServiceSuite) TestLapsedSubscriptionDenies() {
	s.seedSubscription(types.SubscriptionStatePastDue, &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "All Access",
		AllCourses:   true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})

	s.False(s.resolve("user_1", types.NewCourseRef("course_1")).HasAccess)
}

func (s *EntitlementServiceSuite) TestExplicitPlanListScopesAccess() {
	s.seedSubscription(types.SubscriptionStateActive, &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "Starter",
		CourseIDs:    []string{"course_other"},
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})

	// The rule names a different course; nothing here is unlocked
	s.False(s.resolve("user_1", types.NewCourseRef("course_1")).HasAccess)
}

func (s *EntitlementServiceSuite) TestPlanNarrowingTakesEffectImmediately() {
	p := &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "Starter",
		CourseIDs:    []string{"course_1"},
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.seedSubscription(types.SubscriptionStateActive, p)
	s.True(s.resolve("user_1", types.NewCourseRef("course_1")).HasAccess)

	p.CourseIDs = []string{}
	_, err := s.GetStores().PlanRepo.Update(s.GetContext(), p)
	s.Require().NoError(err)

	s.False(s.resolve("user_1", types.NewCourseRef("course_1")).HasAccess)
}

func (s *EntitlementServiceSuite) TestAdminCapabilityGrants() {
	decision, err := s.service.Resolve(s.GetContext(), dto.ResolveAccessRequest{
		UserID:          "user_1",
		StorefrontID:    "store_1",
		Content:         types.NewCourseRef("course_1"),
		AdminCapability: true,
	})
	s.NoError(err)
	s.True(decision.HasAccess)
	s.Equal(types.GrantRouteAdminOverride, decision.Route)
}

func (s *EntitlementServiceSuite) TestUnknownContentIsNotFound() {
	decision, err := s.service.Resolve(s.GetContext(), dto.ResolveAccessRequest{
		UserID:       "user_1",
		StorefrontID: "store_1",
		Content:      types.NewCourseRef("course_missing"),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
	s.False(decision.HasAccess)
}

func (s *EntitlementServiceSuite) TestResolvePublishesAccessTouch() {
	s.purchaseCourse("user_1")

	s.resolve("user_1", types.NewCourseRef("course_1"))
	s.Len(s.GetPublisher().Messages(types.TopicGrantAccessed), 1)
}

func (s *EntitlementServiceSuite) TestUnlockedContentExpandsLiveCatalog() {
	p := &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "All Access",
		AllCourses:   true,
		AllProducts:  true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	_, err := s.GetStores().PlanRepo.Create(s.GetContext(), p)
	s.Require().NoError(err)

	sub := &subscription.Subscription{
		ID:            "subs_1",
		UserID:        "user_1",
		StorefrontID:  "store_1",
		PlanID:        "plan_1",
		State:         types.SubscriptionStateActive,
		BillingPeriod: types.BillingPeriodMonthly,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}

	refs, err := s.service.UnlockedContent(s.GetContext(), sub)
	s.NoError(err)
	s.Len(refs, 2)

	// A course published later is covered on the next call
	_, err = s.GetStores().CatalogRepo.CreateCourse(s.GetContext(), &catalog.Course{
		ID:           "course_2",
		StorefrontID: "store_1",
		Title:        "Advanced Shaping",
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})
	s.Require().NoError(err)

	refs, err = s.service.UnlockedContent(s.GetContext(), sub)
	s.NoError(err)
	s.Len(refs, 3)
}

func (s *EntitlementServiceSuite) TestDuplicateLiveSubscriptionsFirstWins() {
	_, err := s.GetStores().PlanRepo.Create(s.GetContext(), &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "All Access",
		AllCourses:   true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})
	s.Require().NoError(err)

	// Two live subscriptions should never exist; seed them directly to
	// exercise the integrity path.
	for _, id := range []string{"subs_1", "subs_2"} {
		_, err := s.GetStores().SubscriptionRepo.Create(s.GetContext(), &subscription.Subscription{
			ID:            id,
			UserID:        "user_1",
			StorefrontID:  "store_1",
			PlanID:        "plan_1",
			State:         types.SubscriptionStateActive,
			BillingPeriod: types.BillingPeriodMonthly,
			BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
		})
		s.Require().NoError(err)
	}

	decision := s.resolve("user_1", types.NewCourseRef("course_1"))
	s.True(decision.HasAccess)
	s.Equal(types.GrantRouteSubscription, decision.Route)
}

// failingGrantStore simulates ledger reads hitting a broken database.
type failingGrantStore struct {
	grant.Repository
}

func (f *failingGrantStore) FindCompletedByContent(ctx context.Context, userID string, content types.ContentRef, route types.GrantRoute) (*grant.Grant, error) {
	return nil, ierr.NewError("connection reset").
		WithHint("Failed to query grants").
		Mark(ierr.ErrDatabase)
}

func (s *EntitlementServiceSuite) TestRepositoryErrorFailsClosed() {
	params := s.params
	params.GrantRepo = &failingGrantStore{Repository: s.GetStores().GrantRepo}
	broken := NewEntitlementService(params)

	decision, err := broken.Resolve(s.GetContext(), dto.ResolveAccessRequest{
		UserID:       "user_1",
		StorefrontID: "store_1",
		Content:      types.NewCourseRef("course_1"),
	})
	s.NoError(err)
	s.False(decision.HasAccess)
}
