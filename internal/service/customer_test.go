package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/testutil"
	"github.com/courselane/courselane/internal/types"
)

type CustomerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CustomerService
	params  ServiceParams
}

func TestCustomerService(t *testing.T) {
	suite.Run(t, new(CustomerServiceSuite))
}

func (s *CustomerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		CustomerRepo: s.GetStores().CustomerRepo,
	}
	s.service = NewCustomerService(s.params)
}

func (s *CustomerServiceSuite) grantEvent(amount int64) types.GrantEvent {
	return types.GrantEvent{
		EventID:      types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SIDE_EFFECT_MSG),
		GrantID:      "grant_1",
		UserID:       "user_1",
		UserEmail:    "learner@example.com",
		StorefrontID: "store_1",
		Content:      types.NewCourseRef("course_1"),
		Route:        types.GrantRoutePurchase,
		Amount:       decimal.NewFromInt(amount),
		OccurredAt:   time.Now().UTC(),
	}
}

func (s *CustomerServiceSuite) TestFreeGrantCreatesLead() {
	s.NoError(s.service.ApplyGrantEvent(s.GetContext(), s.grantEvent(0)))

	c, err := s.service.GetCustomerByEmail(s.GetContext(), "learner@example.com", "store_1")
	s.NoError(err)
	s.Equal(types.CustomerTypeLead, c.Type)
	s.True(c.TotalSpent.IsZero())
}

func (s *CustomerServiceSuite) TestPaidGrantRatchetsToPaying() {
	s.NoError(s.service.ApplyGrantEvent(s.GetContext(), s.grantEvent(0)))
	s.NoError(s.service.ApplyGrantEvent(s.GetContext(), s.grantEvent(49)))

	c, err := s.service.GetCustomerByEmail(s.GetContext(), "learner@example.com", "store_1")
	s.NoError(err)
	s.Equal(types.CustomerTypePaying, c.Type)
	s.True(c.TotalSpent.Equal(decimal.NewFromInt(49)))
}

func (s *CustomerServiceSuite) TestSpendAccumulatesAcrossGrants() {
	s.NoError(s.service.ApplyGrantEvent(s.GetContext(), s.grantEvent(49)))
	s.NoError(s.service.ApplyGrantEvent(s.GetContext(), s.grantEvent(19)))

	c, err := s.service.GetCustomerByEmail(s.GetContext(), "learner@example.com", "store_1")
	s.NoError(err)
	s.True(c.TotalSpent.Equal(decimal.NewFromInt(68)))
}

func (s *CustomerServiceSuite) TestRefundNeverDemotes() {
	s.NoError(s.service.ApplyGrantEvent(s.GetContext(), s.grantEvent(49)))
	s.NoError(s.service.ApplyRefundEvent(s.GetContext(), s.grantEvent(49)))

	c, err := s.service.GetCustomerByEmail(s.GetContext(), "learner@example.com", "store_1")
	s.NoError(err)
	s.Equal(types.CustomerTypePaying, c.Type)
	// Lifetime gross: the refund does not claw the amount back
	s.True(c.TotalSpent.Equal(decimal.NewFromInt(49)))
}

func (s *CustomerServiceSuite) TestCustomersAreScopedPerStorefront() {
	s.NoError(s.service.ApplyGrantEvent(s.GetContext(), s.grantEvent(49)))

	other := s.grantEvent(0)
	other.StorefrontID = "store_2"
	s.NoError(s.service.ApplyGrantEvent(s.GetContext(), other))

	first, err := s.service.GetCustomerByEmail(s.GetContext(), "learner@example.com", "store_1")
	s.NoError(err)
	s.Equal(types.CustomerTypePaying, first.Type)

	second, err := s.service.GetCustomerByEmail(s.GetContext(), "learner@example.com", "store_2")
	s.NoError(err)
	s.Equal(types.CustomerTypeLead, second.Type)
	s.NotEqual(first.ID, second.ID)
}

func (s *CustomerServiceSuite) TestGrantEventMissingIdentity() {
	ev := s.grantEvent(49)
	ev.UserEmail = ""
	err := s.service.ApplyGrantEvent(s.GetContext(), ev)
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
