package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"

	"github.com/courselane/courselane/internal/api/dto"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/testutil"
	"github.com/courselane/courselane/internal/types"
)

type PlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PlanService
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func (s *PlanServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPlanService(ServiceParams{
		Logger:   s.GetLogger(),
		Config:   s.GetConfig(),
		PlanRepo: s.GetStores().PlanRepo,
	})
}

func (s *PlanServiceSuite) TestCreatePlan() {
	resp, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		StorefrontID: "store_1",
		Name:         "All Access",
		Tier:         1,
		AllCourses:   true,
	})
	s.NoError(err)
	s.True(resp.AllCourses)
	s.Equal(types.StatusPublished, resp.Status)
}

func (s *PlanServiceSuite) TestCreatePlanConflictingRule() {
	_, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		StorefrontID: "store_1",
		Name:         "Broken",
		AllCourses:   true,
		CourseIDs:    []string{"course_1"},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestUpdatePlanPatchesOnlyProvidedFields() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		StorefrontID: "store_1",
		Name:         "Courses Only",
		CourseIDs:    []string{"course_1", "course_2"},
	})
	s.NoError(err)

	updated, err := s.service.UpdatePlan(s.GetContext(), created.ID, dto.UpdatePlanRequest{
		CourseIDs: []string{"course_1"},
	})
	s.NoError(err)
	s.Equal("Courses Only", updated.Name)
	s.Equal([]string{"course_1"}, updated.CourseIDs)

	renamed, err := s.service.UpdatePlan(s.GetContext(), created.ID, dto.UpdatePlanRequest{
		Name: lo.ToPtr("Starter"),
	})
	s.NoError(err)
	s.Equal("Starter", renamed.Name)
	s.Equal([]string{"course_1"}, renamed.CourseIDs)
}

func (s *PlanServiceSuite) TestListPlansScopedToStorefront() {
	for _, sf := range []string{"store_1", "store_1", "store_2"} {
		_, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
			StorefrontID: sf,
			Name:         "Plan",
		})
		s.NoError(err)
	}

	resp, err := s.service.ListPlans(s.GetContext(), "store_1")
	s.NoError(err)
	s.Equal(2, resp.Total)
}

func (s *PlanServiceSuite) TestArchivePlan() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		StorefrontID: "store_1",
		Name:         "Retired",
	})
	s.NoError(err)

	s.NoError(s.service.ArchivePlan(s.GetContext(), created.ID))

	got, err := s.service.GetPlan(s.GetContext(), created.ID)
	s.NoError(err)
	s.False(got.IsAvailable())
}

func (s *PlanServiceSuite) TestGetMissingPlan() {
	_, err := s.service.GetPlan(s.GetContext(), "plan_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
