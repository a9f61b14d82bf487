package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/asventura96/testcenter/internal/model"
	"github.com/asventura96/testcenter/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// FixtureRecord is one entry of a dump file:
// {"model": "certifiers.certifier", "pk": 1, "fields": {...}}.
type FixtureRecord struct {
	Model  string          `json:"model"`
	PK     json.RawMessage `json:"pk"`
	Fields json.RawMessage `json:"fields"`
}

type fixtureLoader struct {
	rank   int
	insert func(ctx context.Context, tx *sqlx.Tx, rec FixtureRecord) error
}

// Parents load before the rows that reference them.
var fixtureLoaders = map[string]fixtureLoader{
	"certifiers.certifier":         {rank: 0, insert: insertCertifierFixture},
	"testcenter.testcenter":        {rank: 0, insert: insertTestCenterFixture},
	"clients.client":               {rank: 0, insert: insertClientFixture},
	"certifications.certification": {rank: 1, insert: insertCertificationFixture},
	"testcenter.testcenterexam":    {rank: 2, insert: insertExamFixture},
}

// resetSerialsSQL moves every generated key past the rows loaded with explicit keys.
var resetSerialsSQL = []string{
	`SELECT setval(pg_get_serial_sequence('certifiers', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM certifiers`,
	`SELECT setval(pg_get_serial_sequence('test_centers', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM test_centers`,
	`SELECT setval(pg_get_serial_sequence('exams', 'id'), COALESCE(MAX(id), 1), MAX(id) IS NOT NULL) FROM exams`,
	`SELECT setval(pg_get_serial_sequence('clients', 'uid'), COALESCE(MAX(uid), 10000000), MAX(uid) IS NOT NULL) FROM clients`,
}

// LoadFixtures inserts every record of the dump in r inside one transaction
// and returns how many rows were loaded per model.
func LoadFixtures(ctx context.Context, db *sqlx.DB, r io.Reader, log *zap.Logger) (map[string]int, error) {
	var records []FixtureRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	for i := range records {
		records[i].Model = strings.ToLower(records[i].Model)
		if _, ok := fixtureLoaders[records[i].Model]; !ok {
			return nil, fmt.Errorf("fixture record %d: unknown model %q", i, records[i].Model)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return fixtureLoaders[records[i].Model].rank < fixtureLoaders[records[j].Model].rank
	})

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin fixture transaction: %w", err)
	}
	defer tx.Rollback()

	counts := make(map[string]int)
	for _, rec := range records {
		if err := fixtureLoaders[rec.Model].insert(ctx, tx, rec); err != nil {
			return nil, fmt.Errorf("failed to load %s pk=%s: %w", rec.Model, rec.PK, err)
		}
		counts[rec.Model]++
	}

	for _, q := range resetSerialsSQL {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return nil, fmt.Errorf("failed to reset serial: %w", err)
		}
	}

	if err := repository.ReconcileSequences(ctx, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit fixture: %w", err)
	}

	for m, n := range counts {
		log.Info("fixture loaded", zap.String("model", m), zap.Int("rows", n))
	}
	return counts, nil
}

func decodeFixture(rec FixtureRecord, pk, fields interface{}) error {
	if err := json.Unmarshal(rec.PK, pk); err != nil {
		return fmt.Errorf("pk: %w", err)
	}
	if err := json.Unmarshal(rec.Fields, fields); err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	return nil
}

func insertCertifierFixture(ctx context.Context, tx *sqlx.Tx, rec FixtureRecord) error {
	var id int
	var f struct {
		Name         string  `json:"name"`
		Abbreviation string  `json:"abbreviation"`
		Notes        *string `json:"notes"`
		Idle         bool    `json:"idle"`
	}
	if err := decodeFixture(rec, &id, &f); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO certifiers (id, name, abbreviation, notes, idle)
		VALUES ($1, $2, $3, $4, $5)
	`, id, f.Name, model.NormalizeAbbreviation(f.Abbreviation), f.Notes, f.Idle)
	return err
}

func insertTestCenterFixture(ctx context.Context, tx *sqlx.Tx, rec FixtureRecord) error {
	var id int
	var f struct {
		Name  string  `json:"name"`
		Notes *string `json:"notes"`
		Idle  bool    `json:"idle"`
	}
	if err := decodeFixture(rec, &id, &f); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx,
		"INSERT INTO test_centers (id, name, notes, idle) VALUES ($1, $2, $3, $4)",
		id, f.Name, f.Notes, f.Idle)
	return err
}

func insertClientFixture(ctx context.Context, tx *sqlx.Tx, rec FixtureRecord) error {
	var uid int64
	var f struct {
		Name    string  `json:"name"`
		Country *string `json:"country"`
		City    *string `json:"city"`
		Notes   *string `json:"notes"`
		Idle    bool    `json:"idle"`
	}
	if err := decodeFixture(rec, &uid, &f); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO clients (uid, name, country, city, notes, idle)
		OVERRIDING SYSTEM VALUE
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uid, strings.ToUpper(strings.TrimSpace(f.Name)), f.Country, f.City, f.Notes, f.Idle)
	return err
}

func insertCertificationFixture(ctx context.Context, tx *sqlx.Tx, rec FixtureRecord) error {
	var id string
	var f struct {
		Certifier int     `json:"certifier"`
		Name      string  `json:"name"`
		ExamCode  *string `json:"examCode"`
		Durantion *int    `json:"durantion"` // spelling of the legacy dump
		Duration  *int    `json:"duration"`
		Notes     *string `json:"notes"`
		Idle      bool    `json:"idle"`
	}
	if err := decodeFixture(rec, &id, &f); err != nil {
		return err
	}

	duration := 0
	switch {
	case f.Duration != nil:
		duration = *f.Duration
	case f.Durantion != nil:
		duration = *f.Durantion
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO certifications (id, certifier_id, name, exam_code, duration, notes, idle)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, strings.ToUpper(id), f.Certifier, f.Name, f.ExamCode, duration, f.Notes, f.Idle)
	return err
}

func insertExamFixture(ctx context.Context, tx *sqlx.Tx, rec FixtureRecord) error {
	var id int
	var f struct {
		Certification string    `json:"certification"`
		TestCenter    int       `json:"testCenter"`
		Client        int64     `json:"client"`
		Date          time.Time `json:"date"`
		Presence      bool      `json:"presence"`
		Notes         *string   `json:"notes"`
	}
	if err := decodeFixture(rec, &id, &f); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO exams (id, certification_id, test_center_id, client_uid, date, presence, notes, checkin_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, strings.ToUpper(f.Certification), f.TestCenter, f.Client, f.Date, f.Presence, f.Notes, uuid.New())
	return err
}
