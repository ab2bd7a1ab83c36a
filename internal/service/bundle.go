package service

import (
	"context"

	"github.com/courselane/courselane/internal/api/dto"
	ierr "github.com/courselane/courselane/internal/errors"
	"github.com/courselane/courselane/internal/types"
)

type BundleService interface {
	CreateBundle(ctx context.Context, req dto.CreateBundleRequest) (*dto.BundleResponse, error)
	GetBundle(ctx context.Context, id string) (*dto.BundleResponse, error)
}

type bundleService struct {
	ServiceParams
}

func NewBundleService(params ServiceParams) BundleService {
	return &bundleService{ServiceParams: params}
}

func (s *bundleService) CreateBundle(ctx context.Context, req dto.CreateBundleRequest) (*dto.BundleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Members must exist at creation time. A member deleted later is
	// skipped at resolve time, not repaired here.
	for _, m := range req.Members {
		var err error
		switch m.Type {
		case types.ContentTypeCourse:
			_, err = s.CatalogRepo.GetCourse(ctx, m.ID)
		case types.ContentTypeProduct:
			_, err = s.CatalogRepo.GetProduct(ctx, m.ID)
		}
		if err != nil {
			if ierr.IsNotFound(err) {
				return nil, ierr.NewError("bundle member does not exist").
					WithHint("Every bundle member must reference an existing course or product").
					WithReportableDetails(map[string]interface{}{
						"content_type": string(m.Type),
						"content_id":   m.ID,
					}).
					Mark(ierr.ErrValidation)
			}
			return nil, err
		}
	}

	b := req.ToBundle(ctx)
	if err := b.Validate(); err != nil {
		return nil, err
	}
	created, err := s.BundleRepo.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	return &dto.BundleResponse{Bundle: created}, nil
}

func (s *bundleService) GetBundle(ctx context.Context, id string) (*dto.BundleResponse, error) {
	if id == "" {
		return nil, ierr.NewError("bundle id is required").
			WithHint("Please provide a valid bundle ID").
			Mark(ierr.ErrValidation)
	}
	b, err := s.BundleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.BundleResponse{Bundle: b}, nil
}
