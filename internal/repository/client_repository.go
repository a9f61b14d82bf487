package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/jmoiron/sqlx"
)

type ClientRepository interface {
	FindAll(ctx context.Context, filter model.ListFilter) ([]*model.Client, int64, error)
	FindByUID(ctx context.Context, uid int64) (*model.Client, error)
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, uid int64) error
}

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

var clientOrderColumns = map[string]string{
	"uid":     "uid",
	"name":    "name",
	"country": "country",
	"city":    "city",
	"idle":    "idle",
}

const clientColumns = `uid, name, country, city, notes, idle, created_at, updated_at`

func (r *clientRepository) FindAll(ctx context.Context, filter model.ListFilter) ([]*model.Client, int64, error) {
	filter.Normalize()

	w := newWhere()
	if filter.Search != "" {
		w.add("(uid::text ILIKE $%[1]d OR name ILIKE $%[1]d)", likePattern(filter.Search))
	}
	if filter.Idle != nil {
		w.add("idle = $%d", *filter.Idle)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM clients WHERE %s", w), w.args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, args := w.page(filter.PerPage, filter.Offset())
	query := fmt.Sprintf(`
		SELECT %s
		FROM clients
		WHERE %s
		%s
		%s
	`, clientColumns, w, orderClause(clientOrderColumns, filter.OrderBy, "name", "uid", filter.Descending), limit)

	clients := []*model.Client{}
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, err
	}

	return clients, total, nil
}

func (r *clientRepository) FindByUID(ctx context.Context, uid int64) (*model.Client, error) {
	var client model.Client
	err := r.db.GetContext(ctx, &client, "SELECT "+clientColumns+" FROM clients WHERE uid = $1", uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &client, nil
}

// Create lets the identity column assign the uid.
func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	query := `
		INSERT INTO clients (name, country, city, notes, idle, created_at, updated_at)
		VALUES (:name, :country, :city, :notes, :idle, NOW(), NOW())
		RETURNING uid, created_at, updated_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, client)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&client.UID, &client.CreatedAt, &client.UpdatedAt); err != nil {
			return err
		}
	}
	return mapError(rows.Err())
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	query := `
		UPDATE clients SET
			name = :name, country = :country, city = :city,
			notes = :notes, idle = :idle, updated_at = NOW()
		WHERE uid = :uid
	`
	res, err := r.db.NamedExecContext(ctx, query, client)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

func (r *clientRepository) Delete(ctx context.Context, uid int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE uid = $1", uid)
	if err != nil {
		return mapError(err)
	}
	return expectAffected(res)
}

var _ ClientRepository = (*clientRepository)(nil)
