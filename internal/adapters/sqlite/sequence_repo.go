package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/cadastre/internal/ports/secondary"
)

// SequenceRepository implements secondary.SequenceRepository with SQLite.
// Every write is a single UPSERT, so concurrent writers serialize on the row
// and a counter can never move backwards.
type SequenceRepository struct {
	db *sql.DB
}

// NewSequenceRepository creates a new SQLite pillar series repository.
func NewSequenceRepository(db *sql.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Allocate advances the series by count and returns the new last issued number.
func (r *SequenceRepository) Allocate(ctx context.Context, prefix string, count int) (int64, error) {
	if count < 1 {
		return 0, fmt.Errorf("allocation count must be positive, got %d", count)
	}

	now := time.Now()
	var last int64
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO pillar_systems (series_prefix, last_issued_number, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(series_prefix) DO UPDATE SET
			last_issued_number = last_issued_number + excluded.last_issued_number,
			updated_at = excluded.updated_at
		RETURNING last_issued_number`,
		prefix, count, now, now,
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %d numbers in series %s: %w", count, prefix, err)
	}
	return last, nil
}

// AdvanceTo raises the counter to at least n.
func (r *SequenceRepository) AdvanceTo(ctx context.Context, prefix string, n int64) error {
	now := time.Now()
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO pillar_systems (series_prefix, last_issued_number, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(series_prefix) DO UPDATE SET
			last_issued_number = MAX(last_issued_number, excluded.last_issued_number),
			updated_at = excluded.updated_at`,
		prefix, n, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to advance series %s: %w", prefix, err)
	}
	return nil
}

// Get retrieves a series counter, nil if the series has never been used.
func (r *SequenceRepository) Get(ctx context.Context, prefix string) (*secondary.SeriesRecord, error) {
	record := &secondary.SeriesRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT series_prefix, last_issued_number, created_at, updated_at FROM pillar_systems WHERE series_prefix = ?",
		prefix,
	).Scan(&record.SeriesPrefix, &record.LastIssuedNumber, &record.CreatedAt, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get series: %w", err)
	}
	return record, nil
}

// Ensure SequenceRepository implements the interface
var _ secondary.SequenceRepository = (*SequenceRepository)(nil)
