package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultAdminEmail    = "admin@testcenter.local"
	DefaultAdminPassword = "Admin@123"
)

type Seeder struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewSeeder(db *sqlx.DB, log *zap.Logger) *Seeder {
	return &Seeder{db: db, log: log}
}

// SeedAdminUser creates the default admin unless one already exists.
func (s *Seeder) SeedAdminUser(ctx context.Context) error {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count)
	if err != nil {
		return err
	}

	if count > 0 {
		s.log.Debug("admin user already exists, skipping seed")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`,
		uuid.New(),
		"Administrator",
		DefaultAdminEmail,
		string(hashedPassword),
		"admin",
		true,
	)
	if err != nil {
		return err
	}

	s.log.Warn("default admin user created, change its password after the first login",
		zap.String("email", DefaultAdminEmail))
	return nil
}
