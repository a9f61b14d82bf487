package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ExamRepository interface {
	FindAll(ctx context.Context, filter model.ExamFilter) ([]*model.Exam, int64, error)
	FindByID(ctx context.Context, id int) (*model.Exam, error)
	FindByCheckinToken(ctx context.Context, token uuid.UUID) (*model.Exam, error)
	Create(ctx context.Context, exam *model.Exam) error
	Update(ctx context.Context, exam *model.Exam) error
	MarkPresent(ctx context.Context, id int) error
	UpdateTicketURL(ctx context.Context, id int, url string) error
	Delete(ctx context.Context, id int) error
}

type examRepository struct {
	db *sqlx.DB
}

func NewExamRepository(db *sqlx.DB) ExamRepository {
	return &examRepository{db: db}
}

var examOrderColumns = map[string]string{
	"id":            "e.id",
	"date":          "e.date",
	"presence":      "e.presence",
	"certification": "c.name",
	"test_center":   "tc.name",
	"client":        "cl.name",
}

const examFrom = `
	FROM exams e
	LEFT JOIN certifications c ON e.certification_id = c.id
	LEFT JOIN test_centers tc ON e.test_center_id = tc.id
	LEFT JOIN clients cl ON e.client_uid = cl.uid
`

const examSelect = `
	SELECT e.id, e.certification_id, e.test_center_id, e.client_uid, e.date,
	       e.presence, e.notes, e.checkin_token, e.ticket_url, e.created_at, e.updated_at,
	       c.name AS certification_name, tc.name AS test_center_name, cl.name AS client_name
` + examFrom

func (r *examRepository) FindAll(ctx context.Context, filter model.ExamFilter) ([]*model.Exam, int64, error) {
	filter.Normalize()

	w := newWhere()
	if filter.Search != "" {
		w.add("(cl.name ILIKE $%[1]d OR c.name ILIKE $%[1]d OR e.certification_id ILIKE $%[1]d)",
			likePattern(filter.Search))
	}
	if filter.ClientUID != nil {
		w.add("e.client_uid = $%d", *filter.ClientUID)
	}
	if filter.CertificationID != "" {
		w.add("e.certification_id = $%d", filter.CertificationID)
	}
	if filter.TestCenterID != nil {
		w.add("e.test_center_id = $%d", *filter.TestCenterID)
	}
	if filter.DateFrom != nil {
		w.add("e.date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		w.add("e.date < $%d", filter.DateTo.AddDate(0, 0, 1))
	}
	if filter.Presence != nil {
		w.add("e.presence = $%d", *filter.Presence)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", examFrom, w), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := w.page(filter.PerPage, filter.Offset())
	query := fmt.Sprintf(`%s
		WHERE %s
		%s
		%s
	`, examSelect, w, orderClause(examOrderColumns, filter.OrderBy, "date", "e.id", filter.Descending), limit)

	exams := []*model.Exam{}
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, err
	}

	return exams, total, nil
}

func (r *examRepository) FindByID(ctx context.Context, id int) (*model.Exam, error) {
	return r.findOne(ctx, "e.id = $1", id)
}

func (r *examRepository) FindByCheckinToken(ctx context.Context, token uuid.UUID) (*model.Exam, error) {
	return r.findOne(ctx, "e.checkin_token = $1", token)
}

func (r *examRepository) findOne(ctx context.Context, cond string, arg interface{}) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.GetContext(ctx, &exam, examSelect+" WHERE "+cond, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) Create(ctx context.Context, exam *model.Exam) error {
	query := `
		INSERT INTO exams (certification_id, test_center_id, client_uid, date, presence, notes,
		                   checkin_token, created_at, updated_at)
		VALUES (:certification_id, :test_center_id, :client_uid, :date, :presence, :notes,
		        :checkin_token, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, exam)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&exam.ID, &exam.CreatedAt, &exam.UpdatedAt); err != nil {
			return err
		}
	}
	return mapError(rows.Err())
}

func (r *examRepository) Update(ctx context.Context, exam *model.Exam) error {
	query := `
		UPDATE exams SET
			certification_id = :certification_id, test_center_id = :test_center_id,
			client_uid = :client_uid, date = :date, presence = :presence,
			notes = :notes, updated_at = NOW()
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, exam)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *examRepository) MarkPresent(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE exams SET presence = TRUE, updated_at = NOW() WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *examRepository) UpdateTicketURL(ctx context.Context, id int, url string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE exams SET ticket_url = $1, updated_at = NOW() WHERE id = $2", url, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *examRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM exams WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

var _ ExamRepository = (*examRepository)(nil)
