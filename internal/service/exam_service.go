package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asventura96/testcenter/internal/config"
	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/asventura96/testcenter/internal/response"
	"github.com/asventura96/testcenter/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrExamNotFound = errors.New("exam not found")

const ticketFolder = "tickets"

// DocumentStore archives generated PDFs. utils.StorageService implements it.
type DocumentStore interface {
	UploadPDF(ctx context.Context, folder string, data []byte, name string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

type ExamService interface {
	GetAll(ctx context.Context, filter model.ExamFilter) ([]*model.Exam, *response.Pagination, error)
	GetByID(ctx context.Context, id int) (*model.Exam, error)
	Create(ctx context.Context, req model.CreateExamRequest) (*model.Exam, error)
	Update(ctx context.Context, id int, req model.UpdateExamRequest) (*model.Exam, error)
	Delete(ctx context.Context, id int) error
	Ticket(ctx context.Context, id int) ([]byte, string, error)
	VerifyCheckin(ctx context.Context, token string) (*model.CheckinResponse, error)
	Checkin(ctx context.Context, token string) (*model.Exam, error)
}

type ExamServiceDeps struct {
	Exams          repository.ExamRepository
	Certifications repository.CertificationRepository
	TestCenters    repository.TestCenterRepository
	Clients        repository.ClientRepository
	Store          DocumentStore // nil when archiving is disabled
}

type examService struct {
	ExamServiceDeps
	cfg *config.AppConfig
	log *zap.Logger
	now func() time.Time
}

func NewExamService(deps ExamServiceDeps, cfg *config.AppConfig, log *zap.Logger) ExamService {
	return &examService{ExamServiceDeps: deps, cfg: cfg, log: log, now: time.Now}
}

func (s *examService) GetAll(ctx context.Context, filter model.ExamFilter) ([]*model.Exam, *response.Pagination, error) {
	exams, total, err := s.Exams.FindAll(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return exams, paginate(filter.ListFilter, total), nil
}

func (s *examService) GetByID(ctx context.Context, id int) (*model.Exam, error) {
	exam, err := s.Exams.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

func (s *examService) Create(ctx context.Context, req model.CreateExamRequest) (*model.Exam, error) {
	req.Normalize()

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	exam := &model.Exam{
		CertificationID: req.CertificationID,
		TestCenterID:    req.TestCenterID,
		ClientUID:       req.ClientUID,
		Date:            req.Date,
		Presence:        req.Presence,
		Notes:           req.Notes,
		CheckinToken:    uuid.New(),
	}

	if err := s.Exams.Create(ctx, exam); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, exam.ID)
}

func (s *examService) Update(ctx context.Context, id int, req model.UpdateExamRequest) (*model.Exam, error) {
	req.Normalize()

	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	exam.CertificationID = req.CertificationID
	exam.TestCenterID = req.TestCenterID
	exam.ClientUID = req.ClientUID
	exam.Date = req.Date
	exam.Presence = req.Presence
	exam.Notes = req.Notes

	if err := s.Exams.Update(ctx, exam); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// checkReferences looks the three referenced rows up concurrently and
// reports the first missing one by its request field.
func (s *examService) checkReferences(ctx context.Context, req model.CreateExamRequest) error {
	var certification *model.Certification
	var center *model.TestCenter
	var client *model.Client

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		certification, err = s.Certifications.FindByID(gctx, req.CertificationID)
		return err
	})
	g.Go(func() (err error) {
		center, err = s.TestCenters.FindByID(gctx, req.TestCenterID)
		return err
	})
	g.Go(func() (err error) {
		client, err = s.Clients.FindByUID(gctx, req.ClientUID)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	switch {
	case certification == nil:
		return &ReferenceError{Field: "certification_id", Value: req.CertificationID}
	case center == nil:
		return &ReferenceError{Field: "test_center_id", Value: req.TestCenterID}
	case client == nil:
		return &ReferenceError{Field: "client_uid", Value: req.ClientUID}
	}
	return nil
}

func (s *examService) Delete(ctx context.Context, id int) error {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Exams.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExamNotFound
		}
		return err
	}

	if s.Store != nil && exam.TicketURL != nil {
		if err := s.Store.DeleteFile(ctx, *exam.TicketURL); err != nil {
			s.log.Warn("failed to remove archived ticket",
				zap.Int("exam_id", id), zap.String("url", *exam.TicketURL), zap.Error(err))
		}
	}
	return nil
}

func (s *examService) checkinURL(token uuid.UUID) string {
	return fmt.Sprintf("%s/api/v1/checkin/%s", s.cfg.URL, token)
}

// Ticket renders the admission ticket of an exam. When a DocumentStore is
// configured the PDF is archived too and the exam's ticket_url updated; an
// archiving failure is logged and does not fail the download.
func (s *examService) Ticket(ctx context.Context, id int) ([]byte, string, error) {
	exam, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	certification, err := s.Certifications.FindByID(ctx, exam.CertificationID)
	if err != nil {
		return nil, "", err
	}

	data := utils.ExamTicketPDFData{
		ExamID:          exam.ID,
		CenterName:      s.cfg.Name,
		ClientUID:       exam.ClientUID,
		CertificationID: exam.CertificationID,
		Date:            exam.Date,
		CheckinURL:      s.checkinURL(exam.CheckinToken),
		GeneratedAt:     s.now(),
	}
	if exam.ClientName != nil {
		data.ClientName = *exam.ClientName
	}
	if exam.TestCenterName != nil {
		data.TestCenterName = *exam.TestCenterName
	}
	if certification != nil {
		data.CertificationName = certification.Name
		data.DurationMinutes = certification.Duration
		if certification.ExamCode != nil {
			data.ExamCode = *certification.ExamCode
		}
	}

	data.QRCodePNG, err = utils.GenerateQRCodePNG(data.CheckinURL, 256)
	if err != nil {
		return nil, "", err
	}

	pdf, err := utils.GenerateExamTicketPDF(data)
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("ticket-%d-%s", exam.ID, exam.CertificationID)

	if s.Store != nil {
		url, err := s.Store.UploadPDF(ctx, ticketFolder, pdf, name)
		if err != nil {
			s.log.Warn("failed to archive ticket", zap.Int("exam_id", exam.ID), zap.Error(err))
		} else if err := s.Exams.UpdateTicketURL(ctx, exam.ID, url); err != nil {
			s.log.Warn("failed to record ticket url", zap.Int("exam_id", exam.ID), zap.Error(err))
		}
	}

	return pdf, name + ".pdf", nil
}

func (s *examService) findByToken(ctx context.Context, token string) (*model.Exam, error) {
	parsed, err := uuid.Parse(token)
	if err != nil {
		return nil, nil
	}
	return s.Exams.FindByCheckinToken(ctx, parsed)
}

func (s *examService) VerifyCheckin(ctx context.Context, token string) (*model.CheckinResponse, error) {
	exam, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if exam == nil {
		return &model.CheckinResponse{
			IsValid: false,
			Message: "Ticket not found. This document may not be genuine.",
		}, nil
	}

	msg := "Ticket is valid."
	if exam.Presence {
		msg = "Ticket is valid. Attendance already confirmed."
	}
	return &model.CheckinResponse{IsValid: true, Exam: exam, Message: msg}, nil
}

// Checkin marks the candidate as present. Repeating it is harmless.
func (s *examService) Checkin(ctx context.Context, token string) (*model.Exam, error) {
	exam, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if exam == nil {
		return nil, ErrExamNotFound
	}

	if !exam.Presence {
		if err := s.Exams.MarkPresent(ctx, exam.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrExamNotFound
			}
			return nil, err
		}
		exam.Presence = true
		s.log.Info("exam check-in", zap.Int("exam_id", exam.ID), zap.Int64("client_uid", exam.ClientUID))
	}
	return exam, nil
}
