package idgen

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/sonigems/saraf-backend/pkg/errors"
)

// Sequence scopes for human-readable display numbers.
const (
	ScopeProductRequest = "PR"
	ScopeSalesRequest   = "SR"
	ScopeBill           = "BILL"
)

// Generator allocates monotonic per-scope, per-year sequence values. Numbers
// are assigned inside the caller's transaction so a rolled-back request never
// burns a visible gap at the head of the sequence.
type Generator interface {
	Next(ctx context.Context, scope string, year int) (int64, error)
	NextNumber(ctx context.Context, scope string, at time.Time) (string, error)
	WithTx(tx *gorm.DB) Generator
}

type generator struct {
	db *gorm.DB
}

// NewGenerator constructs a sequence generator backed by the id_sequences table.
func NewGenerator(db *gorm.DB) (Generator, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &generator{db: db}, nil
}

func (g *generator) WithTx(tx *gorm.DB) Generator {
	if tx == nil {
		return g
	}
	return &generator{db: tx}
}

func (g *generator) Next(ctx context.Context, scope string, year int) (int64, error) {
	if scope == "" {
		return 0, apperrors.New(apperrors.CodeValidation, "sequence scope is required")
	}

	var value int64
	err := g.db.WithContext(ctx).Raw(
		`INSERT INTO id_sequences (scope, year, value) VALUES (?, ?, 1)
		 ON CONFLICT (scope, year) DO UPDATE SET value = id_sequences.value + 1
		 RETURNING value`,
		scope, year,
	).Scan(&value).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "allocating sequence value")
	}
	return value, nil
}

func (g *generator) NextNumber(ctx context.Context, scope string, at time.Time) (string, error) {
	year := at.Year()
	value, err := g.Next(ctx, scope, year)
	if err != nil {
		return "", err
	}
	return Format(scope, year, value), nil
}

// Format renders a display number such as PR-2026-0001. Values beyond four
// digits widen naturally instead of wrapping.
func Format(scope string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%04d", scope, year, value)
}
