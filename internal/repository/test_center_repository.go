package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/jmoiron/sqlx"
)

type TestCenterRepository interface {
	FindAll(ctx context.Context, filter model.ListFilter) ([]*model.TestCenter, int64, error)
	FindByID(ctx context.Context, id int) (*model.TestCenter, error)
	Create(ctx context.Context, center *model.TestCenter) error
	Update(ctx context.Context, center *model.TestCenter) error
	Delete(ctx context.Context, id int) error
}

type testCenterRepository struct {
	db *sqlx.DB
}

func NewTestCenterRepository(db *sqlx.DB) TestCenterRepository {
	return &testCenterRepository{db: db}
}

var testCenterOrderColumns = map[string]string{
	"id":   "id",
	"name": "name",
	"idle": "idle",
}

const testCenterColumns = `id, name, notes, idle, created_at, updated_at`

func (r *testCenterRepository) FindAll(ctx context.Context, filter model.ListFilter) ([]*model.TestCenter, int64, error) {
	filter.Normalize()

	w := newWhere()
	if filter.Search != "" {
		w.add("name ILIKE $%d", likePattern(filter.Search))
	}
	if filter.Idle != nil {
		w.add("idle = $%d", *filter.Idle)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM test_centers WHERE %s", w), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := w.page(filter.PerPage, filter.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM test_centers
		WHERE %s
		%s
		%s
	`, testCenterColumns, w, orderClause(testCenterOrderColumns, filter.OrderBy, "name", "id", filter.Descending), limit)

	centers := []*model.TestCenter{}
	if err := r.db.SelectContext(ctx, &centers, query, args...); err != nil {
		return nil, 0, err
	}

	return centers, total, nil
}

func (r *testCenterRepository) FindByID(ctx context.Context, id int) (*model.TestCenter, error) {
	var center model.TestCenter
	err := r.db.GetContext(ctx, &center, "SELECT "+testCenterColumns+" FROM test_centers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &center, nil
}

func (r *testCenterRepository) Create(ctx context.Context, center *model.TestCenter) error {
	query := `
		INSERT INTO test_centers (name, notes, idle, created_at, updated_at)
		VALUES (:name, :notes, :idle, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, center)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&center.ID, &center.CreatedAt, &center.UpdatedAt); err != nil {
			return err
		}
	}
	return mapError(rows.Err())
}

func (r *testCenterRepository) Update(ctx context.Context, center *model.TestCenter) error {
	query := `
		UPDATE test_centers SET name = :name, notes = :notes, idle = :idle, updated_at = NOW()
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, center)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *testCenterRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM test_centers WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

var _ TestCenterRepository = (*testCenterRepository)(nil)
