package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const incrementSequenceSQL = `
	INSERT INTO certification_sequences (abbreviation, last_value)
	VALUES ($1, 1)
	ON CONFLICT (abbreviation)
	DO UPDATE SET last_value = certification_sequences.last_value + 1
	RETURNING last_value
`

// reconcileSequencesSQL raises every counter to at least the highest
// sequence already present in certifications.
const reconcileSequencesSQL = `
	INSERT INTO certification_sequences (abbreviation, last_value)
	SELECT LEFT(id, LENGTH(id) - 4), MAX(CAST(RIGHT(id, 4) AS INTEGER))
	FROM certifications
	WHERE id ~ '^[A-Z0-9]{1,3}[0-9]{4}$'
	GROUP BY LEFT(id, LENGTH(id) - 4)
	ON CONFLICT (abbreviation)
	DO UPDATE SET last_value = GREATEST(certification_sequences.last_value, EXCLUDED.last_value)
`

// sequenceCounter is the transactional counter behind sequence.Generator.
// The upsert takes a row lock on the abbreviation's counter that is held
// until the surrounding transaction ends, so concurrent creators under the
// same abbreviation queue behind each other and a rollback returns the
// value to the pool.
type sequenceCounter struct {
	tx *sqlx.Tx
}

func (c *sequenceCounter) Increment(ctx context.Context, abbreviation string) (int, error) {
	var n int
	if err := c.tx.QueryRowxContext(ctx, incrementSequenceSQL, abbreviation).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ReconcileSequences is used after bulk loads that insert certification
// ids directly.
func ReconcileSequences(ctx context.Context, exec sqlx.ExecerContext) error {
	if _, err := exec.ExecContext(ctx, reconcileSequencesSQL); err != nil {
		return fmt.Errorf("reconcile certification sequences: %w", err)
	}
	return nil
}
