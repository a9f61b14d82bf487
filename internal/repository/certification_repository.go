package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/sequence"
	"github.com/jmoiron/sqlx"
)

// CertificationTx is the transactional view used while creating a
// certification: it advances the id counter and inserts the row.
type CertificationTx interface {
	sequence.Counter
	// Insert returns an error wrapping sequence.ErrConflict when the id is taken.
	Insert(ctx context.Context, certification *model.Certification) error
}

type CertificationRepository interface {
	FindAll(ctx context.Context, filter model.CertificationFilter) ([]*model.Certification, int64, error)
	FindByID(ctx context.Context, id string) (*model.Certification, error)
	CreateTx(ctx context.Context, fn func(tx CertificationTx) error) error
	Update(ctx context.Context, certification *model.Certification) error
	Delete(ctx context.Context, id string) error
}

type certificationRepository struct {
	db *sqlx.DB
}

func NewCertificationRepository(db *sqlx.DB) CertificationRepository {
	return &certificationRepository{db: db}
}

var certificationOrderColumns = map[string]string{
	"id":        "c.id",
	"name":      "c.name",
	"exam_code": "c.exam_code",
	"duration":  "c.duration",
	"idle":      "c.idle",
	"certifier": "cf.name",
}

const certificationSelect = `
	SELECT c.id, c.certifier_id, c.name, c.exam_code, c.duration, c.notes, c.idle,
	       c.created_at, c.updated_at,
	       cf.name AS certifier_name, cf.abbreviation AS certifier_abbreviation
	FROM certifications c
	LEFT JOIN certifiers cf ON c.certifier_id = cf.id
`

func (r *certificationRepository) FindAll(ctx context.Context, filter model.CertificationFilter) ([]*model.Certification, int64, error) {
	filter.Normalize()

	w := newWhere()
	if filter.Search != "" {
		w.add("(c.name ILIKE $%[1]d OR c.exam_code ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.CertifierID != nil {
		w.add("c.certifier_id = $%d", *filter.CertifierID)
	}
	if filter.Idle != nil {
		w.add("c.idle = $%d", *filter.Idle)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM certifications c WHERE %s", w), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := w.page(filter.PerPage, filter.Offset())
	query := fmt.Sprintf(`%s
		WHERE %s
		%s
		%s
	`, certificationSelect, w, orderClause(certificationOrderColumns, filter.OrderBy, "name", "c.id", filter.Descending), limit)

	certifications := []*model.Certification{}
	if err := r.db.SelectContext(ctx, &certifications, query, args...); err != nil {
		return nil, 0, err
	}

	return certifications, total, nil
}

func (r *certificationRepository) FindByID(ctx context.Context, id string) (*model.Certification, error) {
	var certification model.Certification
	err := r.db.GetContext(ctx, &certification, certificationSelect+" WHERE c.id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &certification, nil
}

// CreateTx runs fn in a transaction whose counter increments and inserts
// commit or roll back together.
func (r *certificationRepository) CreateTx(ctx context.Context, fn func(tx CertificationTx) error) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&certificationTx{sequenceCounter: sequenceCounter{tx: tx}})
	})
}

func (r *certificationRepository) Update(ctx context.Context, certification *model.Certification) error {
	query := `
		UPDATE certifications SET
			certifier_id = :certifier_id, name = :name, exam_code = :exam_code,
			duration = :duration, notes = :notes, idle = :idle, updated_at = NOW()
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, certification)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *certificationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM certifications WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

type certificationTx struct {
	sequenceCounter
}

const insertCertificationSQL = `
	INSERT INTO certifications (id, certifier_id, name, exam_code, duration, notes, idle, created_at, updated_at)
	VALUES (:id, :certifier_id, :name, :exam_code, :duration, :notes, :idle, NOW(), NOW())
`

// Insert runs under a savepoint so a duplicate id leaves the transaction,
// and the counter value already drawn, intact for the next attempt.
func (t *certificationTx) Insert(ctx context.Context, certification *model.Certification) error {
	return savepoint(ctx, t.tx, "certification_insert", func() error {
		_, err := t.tx.NamedExecContext(ctx, insertCertificationSQL, certification)
		if err == nil {
			return nil
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("insert %s: %w", certification.ID, sequence.ErrConflict)
		}
		return mapError(err)
	})
}

var _ CertificationRepository = (*certificationRepository)(nil)
