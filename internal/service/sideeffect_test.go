package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/courselane/courselane/internal/api/dto"
	"github.com/courselane/courselane/internal/pubsub/memory"
	"github.com/courselane/courselane/internal/testutil"
	"github.com/courselane/courselane/internal/types"
)

// SideEffectServiceSuite runs the real in-process bus end to end: the
// grant service publishes and the side-effect consumers project into
// the customer and enrollment stores.
type SideEffectServiceSuite struct {
	testutil.BaseServiceTestSuite
	bus          *memory.PubSub
	cancel       context.CancelFunc
	grantService GrantService
	params       ServiceParams
}

func TestSideEffectService(t *testing.T) {
	suite.Run(t, new(SideEffectServiceSuite))
}

func (s *SideEffectServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.bus = memory.NewPubSub(s.GetLogger())

	s.params = ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		GrantRepo:      s.GetStores().GrantRepo,
		CustomerRepo:   s.GetStores().CustomerRepo,
		EnrollmentRepo: s.GetStores().EnrollmentRepo,
		EventPublisher: s.bus,
	}
	s.grantService = NewGrantService(s.params)

	ctx, cancel := context.WithCancel(s.GetContext())
	s.cancel = cancel

	sideEffects := NewSideEffectService(s.params, s.bus, NewCustomerService(s.params))
	s.Require().NoError(sideEffects.Start(ctx))
}

func (s *SideEffectServiceSuite) TearDownTest() {
	s.cancel()
	s.NoError(s.bus.Close())
}

func (s *SideEffectServiceSuite) purchase() *dto.GrantResponse {
	resp, err := s.grantService.RecordPurchaseGrant(s.GetContext(), dto.RecordPurchaseGrantRequest{
		UserID:        "user_1",
		UserEmail:     "learner@example.com",
		StorefrontID:  "store_1",
		Content:       types.NewCourseRef("course_1"),
		Amount:        decimal.NewFromInt(49),
		Currency:      "USD",
		ExternalTxnID: "txn_1",
	})
	s.Require().NoError(err)
	return resp
}

func (s *SideEffectServiceSuite) TestPurchaseProjectsCustomerAndEnrollment() {
	s.purchase()

	s.Eventually(func() bool {
		c, err := s.GetStores().CustomerRepo.GetByEmailAndStorefront(s.GetContext(), "learner@example.com", "store_1")
		return err == nil && c.Type == types.CustomerTypePaying
	}, time.Second, 10*time.Millisecond)

	s.Eventually(func() bool {
		e, err := s.GetStores().EnrollmentRepo.GetByUserAndCourse(s.GetContext(), "user_1", "course_1")
		return err == nil && e.CourseID == "course_1"
	}, time.Second, 10*time.Millisecond)
}

func (s *SideEffectServiceSuite) TestRefundProjectsActivityOnly() {
	created := s.purchase()

	s.Eventually(func() bool {
		_, err := s.GetStores().CustomerRepo.GetByEmailAndStorefront(s.GetContext(), "learner@example.com", "store_1")
		return err == nil
	}, time.Second, 10*time.Millisecond)

	_, err := s.grantService.RecordRefund(s.GetContext(), created.Grant.ID)
	s.NoError(err)

	// Refunds bump activity but never demote or reduce lifetime spend
	s.Eventually(func() bool {
		c, err := s.GetStores().CustomerRepo.GetByEmailAndStorefront(s.GetContext(), "learner@example.com", "store_1")
		return err == nil &&
			c.Type == types.CustomerTypePaying &&
			c.TotalSpent.Equal(decimal.NewFromInt(49))
	}, time.Second, 10*time.Millisecond)
}

func (s *SideEffectServiceSuite) TestAccessedEventBumpsCounter() {
	created := s.purchase()

	payload, err := json.Marshal(types.GrantAccessedEvent{
		EventID:    types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SIDE_EFFECT_MSG),
		GrantID:    created.Grant.ID,
		OccurredAt: time.Now().UTC(),
	})
	s.Require().NoError(err)

	err = s.bus.Publish(s.GetContext(), types.TopicGrantAccessed, message.NewMessage(watermill.NewUUID(), payload))
	s.NoError(err)

	s.Eventually(func() bool {
		g, err := s.GetStores().GrantRepo.Get(s.GetContext(), created.Grant.ID)
		return err == nil && g.AccessCount == 1 && g.LastAccessedAt != nil
	}, time.Second, 10*time.Millisecond)
}
