package service

import (
	"context"
	"errors"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/asventura96/testcenter/internal/response"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrClientInUse    = errors.New("client still has exams")
)

type ClientService interface {
	GetAll(ctx context.Context, filter model.ListFilter) ([]*model.Client, *response.Pagination, error)
	GetByUID(ctx context.Context, uid int64) (*model.Client, error)
	Create(ctx context.Context, req model.CreateClientRequest) (*model.Client, error)
	Update(ctx context.Context, uid int64, req model.UpdateClientRequest) (*model.Client, error)
	Delete(ctx context.Context, uid int64) error
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) GetAll(ctx context.Context, filter model.ListFilter) ([]*model.Client, *response.Pagination, error) {
	clients, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return clients, paginate(filter, total), nil
}

func (s *clientService) GetByUID(ctx context.Context, uid int64) (*model.Client, error) {
	client, err := s.repo.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, ErrClientNotFound
	}
	return client, nil
}

func (s *clientService) Create(ctx context.Context, req model.CreateClientRequest) (*model.Client, error) {
	req.Normalize()

	client := &model.Client{
		Name:    req.Name,
		Country: req.Country,
		City:    req.City,
		Notes:   req.Notes,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) Update(ctx context.Context, uid int64, req model.UpdateClientRequest) (*model.Client, error) {
	req.Normalize()

	client, err := s.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	client.Name = req.Name
	client.Country = req.Country
	client.City = req.City
	client.Notes = req.Notes
	client.Idle = req.Idle

	if err := s.repo.Update(ctx, client); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, uid int64) error {
	err := s.repo.Delete(ctx, uid)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrClientNotFound
	case errors.Is(err, repository.ErrForeignKey):
		return ErrClientInUse
	}
	return err
}
