package service

import (
	"context"
	"errors"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/sequence"
	"go.uber.org/zap"
)

var (
	ErrCertificationNotFound = errors.New("certification not found")
	ErrCertificationInUse    = errors.New("certification still has exams")
)

type CertificationService interface {
	GetAll(ctx context.Context, filter model.CertificationFilter) ([]*model.Certification, *response.Pagination, error)
	GetByID(ctx context.Context, id string) (*model.Certification, error)
	Create(ctx context.Context, req model.CreateCertificationRequest) (*model.Certification, error)
	Update(ctx context.Context, id string, req model.UpdateCertificationRequest) (*model.Certification, error)
	Delete(ctx context.Context, id string) error
}

type certificationService struct {
	repo          repository.CertificationRepository
	certifierRepo repository.CertifierRepository
	log           *zap.Logger
}

func NewCertificationService(
	repo repository.CertificationRepository,
	certifierRepo repository.CertifierRepository,
	log *zap.Logger,
) CertificationService {
	return &certificationService{repo: repo, certifierRepo: certifierRepo, log: log}
}

func (s *certificationService) GetAll(ctx context.Context, filter model.CertificationFilter) ([]*model.Certification, *response.Pagination, error) {
	certifications, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return certifications, paginate(filter.ListFilter, total), nil
}

func (s *certificationService) GetByID(ctx context.Context, id string) (*model.Certification, error) {
	certification, err := s.repo.FindByID(ctx, model.NormalizeCertificationID(id))
	if err != nil {
		return nil, err
	}
	if certification == nil {
		return nil, ErrCertificationNotFound
	}
	return certification, nil
}

// Create assigns the id from the certifier's sequence. Counter advance and
// insert share one transaction, so a failed create leaves no gap. The one
// exception is a create that only drew ids already present: that counter
// progress is kept, since those ids can never be issued anyway.
func (s *certificationService) Create(ctx context.Context, req model.CreateCertificationRequest) (*model.Certification, error) {
	req.Normalize()

	certifier, err := s.certifierRepo.FindByID(ctx, req.CertifierID)
	if err != nil {
		return nil, err
	}
	if certifier == nil {
		return nil, &ReferenceError{Field: "certifier_id", Value: req.CertifierID}
	}

	certification := &model.Certification{
		CertifierID: certifier.ID,
		Name:        req.Name,
		ExamCode:    req.ExamCode,
		Duration:    req.Duration,
		Notes:       req.Notes,
	}

	var exhausted error
	err = s.repo.CreateTx(ctx, func(tx repository.CertificationTx) error {
		_, err := sequence.NewGenerator(tx).Assign(ctx, certifier.Abbreviation, func(id string) error {
			certification.ID = id
			return tx.Insert(ctx, certification)
		})
		if errors.Is(err, sequence.ErrConcurrencyExhausted) {
			// Every id drawn was already taken. Commit the counter alone so
			// the next create starts past them.
			exhausted = err
			return nil
		}
		return err
	})
	if err == nil {
		err = exhausted
	}
	if err != nil {
		s.log.Warn("certification id assignment failed",
			zap.String("abbreviation", certifier.Abbreviation),
			zap.Int("certifier_id", certifier.ID),
			zap.Error(err))
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, &ReferenceError{Field: "certifier_id", Value: req.CertifierID}
		}
		return nil, err
	}

	s.log.Info("certification created", zap.String("id", certification.ID))
	return s.GetByID(ctx, certification.ID)
}

// Update never touches the id, even when the certifier changes.
func (s *certificationService) Update(ctx context.Context, id string, req model.UpdateCertificationRequest) (*model.Certification, error) {
	req.Normalize()

	certification, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CertifierID != certification.CertifierID {
		certifier, err := s.certifierRepo.FindByID(ctx, req.CertifierID)
		if err != nil {
			return nil, err
		}
		if certifier == nil {
			return nil, &ReferenceError{Field: "certifier_id", Value: req.CertifierID}
		}
	}

	certification.CertifierID = req.CertifierID
	certification.Name = req.Name
	certification.ExamCode = req.ExamCode
	certification.Duration = req.Duration
	certification.Notes = req.Notes
	certification.Idle = req.Idle

	if err := s.repo.Update(ctx, certification); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCertificationNotFound
		case errors.Is(err, repository.ErrForeignKey):
			return nil, &ReferenceError{Field: "certifier_id", Value: req.CertifierID}
		}
		return nil, err
	}
	return s.GetByID(ctx, certification.ID)
}

func (s *certificationService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, model.NormalizeCertificationID(id))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrCertificationNotFound
	case errors.Is(err, repository.ErrForeignKey):
		return ErrCertificationInUse
	}
	return err
}
