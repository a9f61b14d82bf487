package service

import (
	"context"
	"errors"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/asventura96/testcenter/internal/response"
)

var (
	ErrCertifierNotFound = errors.New("certifier not found")
	ErrAbbreviationTaken = errors.New("abbreviation is already used by another certifier")
	ErrCertifierInUse    = errors.New("certifier still has certifications")
)

type CertifierService interface {
	GetAll(ctx context.Context, filter model.ListFilter) ([]*model.Certifier, *response.Pagination, error)
	GetByID(ctx context.Context, id int) (*model.Certifier, error)
	Create(ctx context.Context, req model.CreateCertifierRequest) (*model.Certifier, error)
	Update(ctx context.Context, id int, req model.UpdateCertifierRequest) (*model.Certifier, error)
	Delete(ctx context.Context, id int) error
}

type certifierService struct {
	repo repository.CertifierRepository
}

func NewCertifierService(repo repository.CertifierRepository) CertifierService {
	return &certifierService{repo: repo}
}

func (s *certifierService) GetAll(ctx context.Context, filter model.ListFilter) ([]*model.Certifier, *response.Pagination, error) {
	certifiers, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return certifiers, paginate(filter, total), nil
}

func (s *certifierService) GetByID(ctx context.Context, id int) (*model.Certifier, error) {
	certifier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if certifier == nil {
		return nil, ErrCertifierNotFound
	}
	return certifier, nil
}

func (s *certifierService) Create(ctx context.Context, req model.CreateCertifierRequest) (*model.Certifier, error) {
	req.Normalize()

	if err := s.ensureAbbreviationFree(ctx, req.Abbreviation, 0); err != nil {
		return nil, err
	}

	certifier := &model.Certifier{
		Name:         req.Name,
		Abbreviation: req.Abbreviation,
		Notes:        req.Notes,
	}

	if err := s.repo.Create(ctx, certifier); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAbbreviationTaken
		}
		return nil, err
	}
	return certifier, nil
}

// Update may change the abbreviation. Certification ids already issued keep
// the old prefix; new ones are numbered under the new abbreviation.
func (s *certifierService) Update(ctx context.Context, id int, req model.UpdateCertifierRequest) (*model.Certifier, error) {
	req.Normalize()

	certifier, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureAbbreviationFree(ctx, req.Abbreviation, id); err != nil {
		return nil, err
	}

	certifier.Name = req.Name
	certifier.Abbreviation = req.Abbreviation
	certifier.Notes = req.Notes
	certifier.Idle = req.Idle

	if err := s.repo.Update(ctx, certifier); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrAbbreviationTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCertifierNotFound
		}
		return nil, err
	}
	return certifier, nil
}

func (s *certifierService) Delete(ctx context.Context, id int) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrCertifierNotFound
	case errors.Is(err, repository.ErrForeignKey):
		return ErrCertifierInUse
	}
	return err
}

func (s *certifierService) ensureAbbreviationFree(ctx context.Context, abbreviation string, selfID int) error {
	existing, err := s.repo.FindByAbbreviation(ctx, abbreviation)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return ErrAbbreviationTaken
	}
	return nil
}
