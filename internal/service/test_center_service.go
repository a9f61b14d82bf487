package service

import (
	"context"
	"errors"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/asventura96/testcenter/internal/response"
)

var (
	ErrTestCenterNotFound = errors.New("test center not found")
	ErrTestCenterInUse    = errors.New("test center still has exams")
)

type TestCenterService interface {
	GetAll(ctx context.Context, filter model.ListFilter) ([]*model.TestCenter, *response.Pagination, error)
	GetByID(ctx context.Context, id int) (*model.TestCenter, error)
	Create(ctx context.Context, req model.CreateTestCenterRequest) (*model.TestCenter, error)
	Update(ctx context.Context, id int, req model.UpdateTestCenterRequest) (*model.TestCenter, error)
	Delete(ctx context.Context, id int) error
}

type testCenterService struct {
	repo repository.TestCenterRepository
}

func NewTestCenterService(repo repository.TestCenterRepository) TestCenterService {
	return &testCenterService{repo: repo}
}

func (s *testCenterService) GetAll(ctx context.Context, filter model.ListFilter) ([]*model.TestCenter, *response.Pagination, error) {
	centers, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return centers, paginate(filter, total), nil
}

func (s *testCenterService) GetByID(ctx context.Context, id int) (*model.TestCenter, error) {
	center, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, ErrTestCenterNotFound
	}
	return center, nil
}

func (s *testCenterService) Create(ctx context.Context, req model.CreateTestCenterRequest) (*model.TestCenter, error) {
	req.Normalize()

	center := &model.TestCenter{Name: req.Name, Notes: req.Notes}
	if err := s.repo.Create(ctx, center); err != nil {
		return nil, err
	}
	return center, nil
}

func (s *testCenterService) Update(ctx context.Context, id int, req model.UpdateTestCenterRequest) (*model.TestCenter, error) {
	req.Normalize()

	center, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	center.Name = req.Name
	center.Notes = req.Notes
	center.Idle = req.Idle

	if err := s.repo.Update(ctx, center); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTestCenterNotFound
		}
		return nil, err
	}
	return center, nil
}

func (s *testCenterService) Delete(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTestCenterNotFound
	case errors.Is(err, repository.ErrForeignKey):
		return ErrTestCenterInUse
	}
	return err
}
