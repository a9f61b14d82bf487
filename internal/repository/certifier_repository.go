package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/jmoiron/sqlx"
)

type CertifierRepository interface {
	FindAll(ctx context.Context, filter model.ListFilter) ([]*model.Certifier, int64, error)
	FindByID(ctx context.Context, id int) (*model.Certifier, error)
	FindByAbbreviation(ctx context.Context, abbreviation string) (*model.Certifier, error)
	Create(ctx context.Context, certifier *model.Certifier) error
	Update(ctx context.Context, certifier *model.Certifier) error
	Delete(ctx context.Context, id int) error
}

type certifierRepository struct {
	db *sqlx.DB
}

func NewCertifierRepository(db *sqlx.DB) CertifierRepository {
	return &certifierRepository{db: db}
}

var certifierOrderColumns = map[string]string{
	"id":           "id",
	"name":         "name",
	"abbreviation": "abbreviation",
	"idle":         "idle",
}

const certifierColumns = `id, name, abbreviation, notes, idle, created_at, updated_at`

func (r *certifierRepository) FindAll(ctx context.Context, filter model.ListFilter) ([]*model.Certifier, int64, error) {
	filter.Normalize()

	w := newWhere()
	if filter.Search != "" {
		w.add("(name ILIKE $%[1]d OR abbreviation ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.Idle != nil {
		w.add("idle = $%d", *filter.Idle)
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM certifiers WHERE %s", w)
	if err := r.db.QueryRowContext(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := w.page(filter.PerPage, filter.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM certifiers
		WHERE %s
		%s
		%s
	`, certifierColumns, w, orderClause(certifierOrderColumns, filter.OrderBy, "name", "id", filter.Descending), limit)

	certifiers := []*model.Certifier{}
	if err := r.db.SelectContext(ctx, &certifiers, query, args...); err != nil {
		return nil, 0, err
	}

	return certifiers, total, nil
}

func (r *certifierRepository) FindByID(ctx context.Context, id int) (*model.Certifier, error) {
	var certifier model.Certifier
	err := r.db.GetContext(ctx, &certifier,
		"SELECT "+certifierColumns+" FROM certifiers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &certifier, nil
}

func (r *certifierRepository) FindByAbbreviation(ctx context.Context, abbreviation string) (*model.Certifier, error) {
	var certifier model.Certifier
	err := r.db.GetContext(ctx, &certifier,
		"SELECT "+certifierColumns+" FROM certifiers WHERE UPPER(abbreviation) = UPPER($1)", abbreviation)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &certifier, nil
}

func (r *certifierRepository) Create(ctx context.Context, certifier *model.Certifier) error {
	query := `
		INSERT INTO certifiers (name, abbreviation, notes, idle, created_at, updated_at)
		VALUES (:name, :abbreviation, :notes, :idle, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, certifier)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&certifier.ID, &certifier.CreatedAt, &certifier.UpdatedAt); err != nil {
			return err
		}
	}
	return mapError(rows.Err())
}

func (r *certifierRepository) Update(ctx context.Context, certifier *model.Certifier) error {
	query := `
		UPDATE certifiers SET
			name = :name, abbreviation = :abbreviation, notes = :notes,
			idle = :idle, updated_at = NOW()
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, certifier)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *certifierRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM certifiers WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

var _ CertifierRepository = (*certifierRepository)(nil)
