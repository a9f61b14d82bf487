// Package sequence assigns human-readable certification ids of the form
// <abbreviation><4-digit sequence>, e.g. CIS0007.
//
// Numbering is scoped per certifier abbreviation and driven by an explicit
// counter that the store advances atomically, so no scan over existing ids
// is ever needed.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

const (
	// PrefixWidth is the widest abbreviation an id can carry.
	PrefixWidth = 3
	// Digits is the zero-padded width of the numeric part.
	Digits = 4
	// Max is the last sequence value representable in Digits digits.
	Max = 9999
	// MaxAttempts bounds how many ids Assign tries before giving up.
	MaxAttempts = 3
)

var (
	ErrConfiguration        = errors.New("certifier abbreviation is missing or malformed")
	ErrOverflow             = errors.New("certification sequence exhausted for abbreviation")
	ErrConflict             = errors.New("certification id already exists")
	ErrConcurrencyExhausted = errors.New("could not assign a certification id after retries")
)

// Counter advances the per-abbreviation counter and returns the new value.
// Implementations must make the increment atomic with respect to other
// callers using the same abbreviation.
type Counter interface {
	Increment(ctx context.Context, abbreviation string) (int, error)
}

type Generator struct {
	counter Counter
}

func NewGenerator(counter Counter) *Generator {
	return &Generator{counter: counter}
}

// Next returns the next id for abbreviation. The abbreviation is validated
// before the counter is touched.
func (g *Generator) Next(ctx context.Context, abbreviation string) (string, error) {
	if err := ValidateAbbreviation(abbreviation); err != nil {
		return "", err
	}

	n, err := g.counter.Increment(ctx, abbreviation)
	if err != nil {
		return "", fmt.Errorf("advance sequence %s: %w", abbreviation, err)
	}

	return Format(abbreviation, n)
}

// Assign draws ids from Next and hands each to insert until one is accepted.
// insert must return an error wrapping ErrConflict when the id is taken;
// any other error stops the loop immediately.
func (g *Generator) Assign(ctx context.Context, abbreviation string, insert func(id string) error) (string, error) {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		id, err := g.Next(ctx, abbreviation)
		if err != nil {
			return "", err
		}

		err = insert(id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, ErrConflict) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w (%d attempts): %v", ErrConcurrencyExhausted, MaxAttempts, lastErr)
}

// ValidateAbbreviation accepts 1 to PrefixWidth upper-case letters or digits.
func ValidateAbbreviation(abbreviation string) error {
	if abbreviation == "" || len(abbreviation) > PrefixWidth {
		return fmt.Errorf("%w: %q", ErrConfiguration, abbreviation)
	}
	for _, r := range abbreviation {
		if !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return fmt.Errorf("%w: %q", ErrConfiguration, abbreviation)
		}
	}
	return nil
}

// Format renders abbreviation and n as an id.
func Format(abbreviation string, n int) (string, error) {
	if err := ValidateAbbreviation(abbreviation); err != nil {
		return "", err
	}
	if n < 1 {
		return "", fmt.Errorf("sequence value must be positive, got %d", n)
	}
	if n > Max {
		return "", fmt.Errorf("%w: %s reached %d", ErrOverflow, abbreviation, n)
	}
	return fmt.Sprintf("%s%0*d", abbreviation, Digits, n), nil
}

// Parse splits an id into its abbreviation and sequence number.
func Parse(id string) (string, int, error) {
	if len(id) <= Digits || len(id) > PrefixWidth+Digits {
		return "", 0, fmt.Errorf("malformed certification id %q", id)
	}

	prefix, digits := id[:len(id)-Digits], id[len(id)-Digits:]
	if err := ValidateAbbreviation(prefix); err != nil {
		return "", 0, err
	}

	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", 0, fmt.Errorf("malformed certification id %q", id)
		}
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return "", 0, fmt.Errorf("malformed certification id %q", id)
	}
	return prefix, n, nil
}
