package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/courselane/courselane/internal/api/dto"
	"github.com/courselane/courselane/internal/domain/catalog"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/testutil"
	"github.com/courselane/courselane/internal/types"
)

type BundleServiceSuite struct {
	testutil.BaseServiceTestSuite
	service BundleService
}

func TestBundleService(t *testing.T) {
	suite.Run(t, new(BundleServiceSuite))
}

func (s *BundleServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewBundleService(ServiceParams{
		Logger:      s.GetLogger(),
		Config:      s.GetConfig(),
		BundleRepo:  s.GetStores().BundleRepo,
		CatalogRepo: s.GetStores().CatalogRepo,
	})

	_, err := s.GetStores().CatalogRepo.CreateCourse(s.GetContext(), &catalog.Course{
		ID:           "course_1",
		StorefrontID: "store_1",
		Title:        "Sourdough Basics",
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})
	s.Require().NoError(err)
	_, err = s.GetStores().CatalogRepo.CreateProduct(s.GetContext(), &catalog.DigitalProduct{
		ID:           "prod_1",
		StorefrontID: "store_1",
		Title:        "Recipe Pack",
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	})
	s.Require().NoError(err)
}

func (s *BundleServiceSuite) TestCreateBundle() {
	resp, err := s.service.CreateBundle(s.GetContext(), dto.CreateBundleRequest{
		StorefrontID: "store_1",
		Name:         "Baker's Kit",
		Price:        decimal.NewFromInt(79),
		Currency:     "USD",
		Members: []types.ContentRef{
			{Type: types.ContentTypeCourse, ID: "course_1"},
			{Type: types.ContentTypeProduct, ID: "prod_1"},
		},
	})
	s.NoError(err)
	s.Len(resp.Members, 2)

	got, err := s.service.GetBundle(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal("Baker's Kit", got.Name)
}

func (s *BundleServiceSuite) TestCreateBundleMissingMember() {
	_, err := s.service.CreateBundle(s.GetContext(), dto.CreateBundleRequest{
		StorefrontID: "store_1",
		Name:         "Ghost Kit",
		Members: []types.ContentRef{
			{Type: types.ContentTypeCourse, ID: "course_missing"},
		},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BundleServiceSuite) TestCreateBundleRejectsChapterMember() {
	_, err := s.service.CreateBundle(s.GetContext(), dto.CreateBundleRequest{
		StorefrontID: "store_1",
		Name:         "Bad Kit",
		Members: []types.ContentRef{
			{Type: types.ContentTypeChapter, ID: "chapter_1"},
		},
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *BundleServiceSuite) TestCreateBundleNoMembers() {
	_, err := s.service.CreateBundle(s.GetContext(), dto.CreateBundleRequest{
		StorefrontID: "store_1",
		Name:         "Empty Kit",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}
