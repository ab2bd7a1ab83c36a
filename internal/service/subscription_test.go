package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/courselane/courselane/internal/api/dto"
	"github.com/courselane/courselane/internal/domain/plan"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/testutil"
	"github.com/courselane/courselane/internal/types"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service SubscriptionService
	params  ServiceParams
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		PlanRepo:         s.GetStores().PlanRepo,
		SubscriptionRepo: s.GetStores().SubscriptionRepo,
	}
	s.service = NewSubscriptionService(s.params)

	_, err := s.GetStores().PlanRepo.Create(s.GetContext(), &plan.Plan{
		ID:           "plan_1",
		StorefrontID: "store_1",
		Name:         "All Access",
		AllCourses:   true,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})
	s.Require().NoError(err)
}

func (s *SubscriptionServiceSuite) createRequest() dto.CreateSubscriptionRequest {
	return dto.CreateSubscriptionRequest{
		UserID:        "user_1",
		StorefrontID:  "store_1",
		PlanID:        "plan_1",
		BillingPeriod: types.BillingPeriodMonthly,
	}
}

func (s *SubscriptionServiceSuite) TestCreateSubscription() {
	resp, err := s.service.CreateSubscription(s.GetContext(), s.createRequest())
	s.NoError(err)
	s.Equal(types.SubscriptionStateActive, resp.State)
	s.NotNil(resp.CurrentPeriodEnd)
}

func (s *SubscriptionServiceSuite) TestCreateTrialSubscription() {
	req := s.createRequest()
	req.Trial = true
	resp, err := s.service.CreateSubscription(s.GetContext(), req)
	s.NoError(err)
	s.Equal(types.SubscriptionStateTrialing, resp.State)
}

func (s *SubscriptionServiceSuite) TestSecondLiveSubscriptionRejected() {
	_, err := s.service.CreateSubscription(s.GetContext(), s.createRequest())
	s.NoError(err)

	_, err = s.service.CreateSubscription(s.GetContext(), s.createRequest())
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *SubscriptionServiceSuite) TestNewSubscriptionAllowedAfterCancel() {
	first, err := s.service.CreateSubscription(s.GetContext(), s.createRequest())
	s.NoError(err)

	canceled, err := s.service.UpdateSubscriptionState(s.GetContext(), first.ID, dto.UpdateSubscriptionStateRequest{
		State: types.SubscriptionStateCanceled,
	})
	s.NoError(err)
	s.NotNil(canceled.CanceledAt)

	second, err := s.service.CreateSubscription(s.GetContext(), s.createRequest())
	s.NoError(err)
	s.NotEqual(first.ID, second.ID)
}

func (s *SubscriptionServiceSuite) TestCanceledIsTerminal() {
	created, err := s.service.CreateSubscription(s.GetContext(), s.createRequest())
	s.NoError(err)

	_, err = s.service.UpdateSubscriptionState(s.GetContext(), created.ID, dto.UpdateSubscriptionStateRequest{
		State: types.SubscriptionStateCanceled,
	})
	s.NoError(err)

	_, err = s.service.UpdateSubscriptionState(s.GetContext(), created.ID, dto.UpdateSubscriptionStateRequest{
		State: types.SubscriptionStateActive,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestArchivedPlanRejectsNewSubscriptions() {
	s.NoError(s.GetStores().PlanRepo.Archive(s.GetContext(), "plan_1"))

	_, err := s.service.CreateSubscription(s.GetContext(), s.createRequest())
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestStorefrontMismatchRejected() {
	req := s.createRequest()
	req.StorefrontID = "store_2"
	_, err := s.service.CreateSubscription(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *SubscriptionServiceSuite) TestPastDueKeepsSubscriptionLive() {
	created, err := s.service.CreateSubscription(s.GetContext(), s.createRequest())
	s.NoError(err)

	updated, err := s.service.UpdateSubscriptionState(s.GetContext(), created.ID, dto.UpdateSubscriptionStateRequest{
		State: types.SubscriptionStatePastDue,
	})
	s.NoError(err)
	s.False(updated.IsEntitled())

	// Past due still occupies the single live slot
	_, err = s.service.CreateSubscription(s.GetContext(), s.createRequest())
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}
